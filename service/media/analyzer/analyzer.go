package analyzer

import (
	"context"
	"fmt"

	"media-engine-backend/model"
)

// Analyzer runs the media-type-specific AI analysis for one file.
type Analyzer interface {
	// CanProcess reports whether this analyzer handles the media type.
	CanProcess(mediaType model.MediaType) bool

	// Analyze inspects the file at localPath and returns the analysis
	// result. A returned error makes the orchestrator fall back to a
	// degraded result; it never fails the job by itself.
	Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error)
}

// Result is the merged output of one analysis pass.
type Result struct {
	Description         string
	DetailedDescription string
	Tags                []string
	Embedding           []float32
	ExtractedText       string

	FaceCount     int
	FaceEncodings [][]float64

	DurationSeconds          float64
	PageCount                int
	Language                 string
	DocumentType             string
	ClassificationConfidence float64
	ThumbnailPath            string

	// Degraded marks a filename-only fallback produced after the
	// analysis path failed.
	Degraded bool
}

// DegradedResult is persisted when an analysis path fails entirely:
// a filename-only description, no embedding.
func DegradedResult(rec *model.MediaRecord) *Result {
	return &Result{
		Description: fmt.Sprintf("%s file: %s", rec.MediaType, rec.FileName),
		Tags:        []string{string(rec.MediaType)},
		Degraded:    true,
	}
}
