package analyzer

import (
	"context"
	"fmt"

	"media-engine-backend/model"
)

// FallbackAnalyzer handles the unknown media type: no AI call, it
// just records what the file claims to be.
type FallbackAnalyzer struct{}

var _ Analyzer = &FallbackAnalyzer{}

func NewFallbackAnalyzer() *FallbackAnalyzer {
	return &FallbackAnalyzer{}
}

func (a *FallbackAnalyzer) CanProcess(model.MediaType) bool {
	return true
}

func (a *FallbackAnalyzer) Analyze(_ context.Context, rec *model.MediaRecord, _ string) (*Result, error) {
	description := fmt.Sprintf("File: %s", rec.FileName)
	if rec.MimeType != "" {
		description = fmt.Sprintf("File: %s (%s)", rec.FileName, rec.MimeType)
	}
	return &Result{
		Description: description,
		Tags:        []string{string(rec.MediaType)},
	}, nil
}
