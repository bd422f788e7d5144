package search

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"media-engine-backend/config"
)

// VectorHit is one nearest-neighbor match. Similarity is cosine, in
// [-1, 1], higher is closer.
type VectorHit struct {
	MediaID    uint
	Similarity float64
}

// VectorStore is the approximate nearest-neighbor index over
// embeddings of completed media records.
type VectorStore interface {
	Upsert(ctx context.Context, mediaID uint, vector []float32, description string) error
	Remove(ctx context.Context, mediaID uint) error
	Query(ctx context.Context, vector []float32, limit int, threshold float64) ([]VectorHit, error)
}

type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dim        int
}

var _ VectorStore = &MilvusStore{}

func NewMilvusStore(ctx context.Context) (*MilvusStore, error) {
	cli, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: config.Cfg.Milvus.Endpoint,
		APIKey:  config.Cfg.Milvus.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %v", err)
	}
	return &MilvusStore{
		client:     cli,
		collection: config.Cfg.Milvus.Collection,
		dim:        config.Cfg.AI.EmbeddingDim,
	}, nil
}

func (s *MilvusStore) Upsert(ctx context.Context, mediaID uint, vector []float32, description string) error {
	if len(vector) != s.dim {
		return fmt.Errorf("embedding for media %d has dimension %d, collection expects %d", mediaID, len(vector), s.dim)
	}

	// reprocessing replaces the previous vector
	if err := s.Remove(ctx, mediaID); err != nil {
		return err
	}

	insertOption := milvusclient.NewColumnBasedInsertOption(s.collection).WithColumns(
		column.NewColumnInt64("media_id", []int64{int64(mediaID)}),
		column.NewColumnFloatVector("vector", s.dim, [][]float32{vector}),
		column.NewColumnVarChar("description", []string{description}),
	)
	if _, err := s.client.Insert(ctx, insertOption); err != nil {
		return fmt.Errorf("failed to insert embedding for media %d: %v", mediaID, err)
	}
	return nil
}

func (s *MilvusStore) Remove(ctx context.Context, mediaID uint) error {
	deleteOption := milvusclient.NewDeleteOption(s.collection).
		WithExpr(fmt.Sprintf("media_id == %d", mediaID))
	if _, err := s.client.Delete(ctx, deleteOption); err != nil {
		return fmt.Errorf("failed to delete embedding for media %d: %v", mediaID, err)
	}
	return nil
}

// Query runs a cosine range search: the threshold is pushed down as
// the search radius so filtering happens inside the index, not in the
// application.
func (s *MilvusStore) Query(ctx context.Context, vector []float32, limit int, threshold float64) ([]VectorHit, error) {
	annParam := index.NewCustomAnnParam()
	annParam.WithRadius(threshold)

	searchOption := milvusclient.NewSearchOption(s.collection, limit, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField("vector").
		WithOutputFields("media_id").
		WithAnnParam(annParam)

	results, err := s.client.Search(ctx, searchOption)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %v", err)
	}

	var hits []VectorHit
	for _, rs := range results {
		idColumn := rs.GetColumn("media_id")
		if idColumn == nil {
			continue
		}
		for i := 0; i < rs.ResultCount; i++ {
			id, err := idColumn.GetAsInt64(i)
			if err != nil {
				continue
			}
			hits = append(hits, VectorHit{
				MediaID:    uint(id),
				Similarity: float64(rs.Scores[i]),
			})
		}
	}
	return hits, nil
}
