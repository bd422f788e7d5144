package media

import (
	"context"

	"media-engine-backend/model"
)

// RecordStore is the persistence the orchestrator needs. dao provides
// the MySQL implementation.
type RecordStore interface {
	GetByID(id uint) (*model.MediaRecord, error)
	Save(rec *model.MediaRecord) error
}

// BatchStore records per-file outcomes on the owning batch. Each file
// contributes exactly one outcome; ReplaceOutcome flips it when a
// redelivered file lands on the other terminal state.
type BatchStore interface {
	RecordOutcome(id uint, success bool) error
	ReplaceOutcome(id uint, success bool) error
}

// VectorSink stores embeddings of completed records for nearest-
// neighbor search.
type VectorSink interface {
	Upsert(ctx context.Context, mediaID uint, vector []float32, description string) error
}

// FaceSink hands detected face encodings to the clustering
// collaborator. Called only when processing succeeded and at least
// one face was found.
type FaceSink interface {
	Cluster(ctx context.Context, mediaID uint, encodings [][]float64)
}
