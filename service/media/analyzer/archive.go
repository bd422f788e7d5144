package analyzer

import (
	"context"
	"fmt"
	"sort"

	"media-engine-backend/model"
	"media-engine-backend/service/ai"
)

type ArchiveAnalyzer struct {
	backend ai.Backend
}

var _ Analyzer = &ArchiveAnalyzer{}

func NewArchiveAnalyzer(backend ai.Backend) *ArchiveAnalyzer {
	return &ArchiveAnalyzer{backend: backend}
}

func (a *ArchiveAnalyzer) CanProcess(mediaType model.MediaType) bool {
	return mediaType == model.MediaTypeArchive
}

func (a *ArchiveAnalyzer) Analyze(ctx context.Context, rec *model.MediaRecord, localPath string) (*Result, error) {
	metadata, err := a.backend.ExtractArchiveMetadata(ctx, ai.ExtractArchiveMetadataRequest{
		FilePath: localPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract archive metadata: %w", err)
	}

	types := make([]string, 0, len(metadata.FileTypes))
	for t := range metadata.FileTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	description := fmt.Sprintf("Archive with %d files", metadata.FileCount)
	if len(types) > 0 {
		description = fmt.Sprintf("%s (%v)", description, types)
	}

	return &Result{
		Description: description,
		Tags:        append([]string{"archive"}, types...),
	}, nil
}
