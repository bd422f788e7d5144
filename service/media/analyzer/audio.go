package analyzer

import (
	"context"
	"fmt"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

type AudioAnalyzer struct {
	backend ai.Backend
}

var _ Analyzer = &AudioAnalyzer{}

func NewAudioAnalyzer(backend ai.Backend) *AudioAnalyzer {
	return &AudioAnalyzer{backend: backend}
}

func (a *AudioAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeAudio
}

func (a *AudioAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	transcription, err := a.backend.TranscribeAudio(ctx, ai.TranscribeAudioRequest{
		AudioPath: localPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}

	description := preview(transcription.Text)
	if description == "" {
		description = fmt.Sprintf("Audio file: %s", rec.FileName)
	}

	return &Result{
		Description:   description,
		Tags:          []string{"audio"},
		Embedding:     transcription.Embedding,
		ExtractedText: transcription.Text,
		Language:      transcription.Language,
		ThumbnailPath: transcription.ThumbnailPath,
	}, nil
}
