package analyzer

import (
	"context"
	"fmt"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

type ImageAnalyzer struct {
	backend ai.Backend
}

var _ Analyzer = &ImageAnalyzer{}

func NewImageAnalyzer(backend ai.Backend) *ImageAnalyzer {
	return &ImageAnalyzer{backend: backend}
}

func (a *ImageAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeImage
}

func (a *ImageAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	analysis, err := a.backend.AnalyzeImage(ctx, ai.AnalyzeImageRequest{
		ImagePath:   localPath,
		UseOllama:   true,
		DetectFaces: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	return &Result{
		Description:         analysis.Description,
		DetailedDescription: analysis.DetailedDescription,
		Tags:                analysis.MetaTags,
		Embedding:           analysis.Embedding,
		ExtractedText:       analysis.ExtractedText,
		FaceCount:           analysis.FacesDetected,
		FaceEncodings:       analysis.FaceEncodings,
		ThumbnailPath:       analysis.ThumbnailPath,
	}, nil
}
