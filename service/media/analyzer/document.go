package analyzer

import (
	"context"
	"fmt"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

const descriptionPreviewLen = 200

type DocumentAnalyzer struct {
	backend ai.Backend
}

var _ Analyzer = &DocumentAnalyzer{}

func NewDocumentAnalyzer(backend ai.Backend) *DocumentAnalyzer {
	return &DocumentAnalyzer{backend: backend}
}

func (a *DocumentAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeDocument
}

func (a *DocumentAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	analysis, err := a.backend.AnalyzeDocument(ctx, ai.AnalyzeDocumentRequest{
		DocumentPath: localPath,
		PerformOCR:   true,
		UseOllama:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	description := analysis.Summary
	if description == "" {
		description = preview(analysis.ExtractedText)
	}
	if description == "" {
		description = fmt.Sprintf("Document: %s", rec.FileName)
	}

	return &Result{
		Description:              description,
		Tags:                     append([]string{"document"}, analysis.Keywords...),
		Embedding:                analysis.Embedding,
		ExtractedText:            analysis.ExtractedText,
		PageCount:                analysis.PageCount,
		DocumentType:             analysis.DocumentType,
		ClassificationConfidence: analysis.ClassificationConfidence,
		ThumbnailPath:            analysis.ThumbnailPath,
	}, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > descriptionPreviewLen {
		return string(runes[:descriptionPreviewLen]) + "..."
	}
	return text
}
