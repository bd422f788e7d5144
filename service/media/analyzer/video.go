package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

// number of scene captions used for the concatenated fallback summary
const fallbackSceneCount = 3

type VideoAnalyzer struct {
	backend  ai.Backend
	enhancer Enhancer
}

var _ Analyzer = &VideoAnalyzer{}

// NewVideoAnalyzer creates the video path. enhancer may be nil, in
// which case summaries are always concatenated captions.
func NewVideoAnalyzer(backend ai.Backend, enhancer Enhancer) *VideoAnalyzer {
	return &VideoAnalyzer{backend: backend, enhancer: enhancer}
}

func (a *VideoAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeVideo
}

func (a *VideoAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	analysis, err := a.backend.AnalyzeVideo(ctx, ai.AnalyzeVideoRequest{
		VideoPath:     localPath,
		ExtractFrames: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze video: %w", err)
	}

	scenes := make([]string, 0, len(analysis.SceneDescriptions))
	for _, scene := range analysis.SceneDescriptions {
		if scene.Description != "" {
			scenes = append(scenes, scene.Description)
		}
	}

	return &Result{
		Description:     a.summarize(ctx, rec, scenes),
		Tags:            append([]string{"video"}, analysis.ObjectsDetected...),
		Embedding:       analysis.Embedding,
		DurationSeconds: analysis.DurationSeconds,
		ThumbnailPath:   analysis.ThumbnailPath,
	}, nil
}

// summarize asks the enhancement LLM for a coherent paragraph and
// falls back to concatenating the first scene captions when that
// backend is unavailable. The fallback never fails the job.
func (a *VideoAnalyzer) summarize(ctx context.Context, rec *model.MediaRecord, scenes []string) string {
	if len(scenes) == 0 {
		return fmt.Sprintf("Video file: %s", rec.FileName)
	}

	if a.enhancer != nil {
		summary, err := a.enhancer.Enhance(ctx, scenes)
		if err == nil && summary != "" {
			return summary
		}
		slog.Warn("Video summary enhancement failed, falling back to scene captions",
			"media_id", rec.ID,
			"err", err,
		)
	}

	top := scenes
	if len(top) > fallbackSceneCount {
		top = top[:fallbackSceneCount]
	}
	return "Video scenes: " + strings.Join(top, "; ")
}
