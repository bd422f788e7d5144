package analyzer

import (
	"context"
	"fmt"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

type CodeAnalyzer struct {
	backend ai.Backend
}

var _ Analyzer = &CodeAnalyzer{}

func NewCodeAnalyzer(backend ai.Backend) *CodeAnalyzer {
	return &CodeAnalyzer{backend: backend}
}

func (a *CodeAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeCode
}

func (a *CodeAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	analysis, err := a.backend.AnalyzeCodeFile(ctx, ai.AnalyzeCodeFileRequest{
		FilePath: localPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze code file: %w", err)
	}

	description := fmt.Sprintf("%s source file %s (%d lines, %d code)",
		analysis.Language, rec.FileName, analysis.LineCount, analysis.CodeLines)

	return &Result{
		Description:   description,
		Tags:          []string{"code", analysis.Language},
		Embedding:     embedText(ctx, a.backend, description+"\n"+preview(analysis.ExtractedText)),
		ExtractedText: analysis.ExtractedText,
		Language:      analysis.Language,
	}, nil
}
