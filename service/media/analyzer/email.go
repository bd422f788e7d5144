package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

type EmailAnalyzer struct {
	backend ai.Backend
}

var _ Analyzer = &EmailAnalyzer{}

func NewEmailAnalyzer(backend ai.Backend) *EmailAnalyzer {
	return &EmailAnalyzer{backend: backend}
}

func (a *EmailAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeEmail
}

func (a *EmailAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	extraction, err := a.backend.ExtractEmail(ctx, ai.ExtractEmailRequest{
		FilePath: localPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract email: %w", err)
	}

	description := fmt.Sprintf("Email from %s: %s", extraction.Sender, extraction.Subject)
	if extraction.Sender == "" && extraction.Subject == "" {
		description = fmt.Sprintf("Email file: %s", rec.FileName)
	}

	// the structural extraction carries no vector; embed the body so
	// emails still show up in semantic search
	embedding := embedText(ctx, a.backend, description+"\n"+preview(extraction.Body))

	return &Result{
		Description:   description,
		Tags:          []string{"email"},
		Embedding:     embedding,
		ExtractedText: extraction.Body,
	}, nil
}

// embedText is a best-effort embedding for analyzers whose backend
// endpoint returns none. Failure degrades to keyword-only search for
// the record instead of failing the job.
func embedText(ctx context.Context, backend ai.Backend, text string) []float32 {
	if text == "" {
		return nil
	}
	embedding, err := backend.EmbedText(ctx, text)
	if err != nil {
		slog.Warn("Failed to embed analyzer text, record will be keyword-only", "err", err)
		return nil
	}
	return embedding
}
