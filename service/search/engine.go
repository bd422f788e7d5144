package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"media-engine-backend/model"
	"media-engine-backend/service/cache"
)

type MatchType string

const (
	// MatchTypeText marks a keyword hit, always with similarity 1.0.
	MatchTypeText MatchType = "text"

	// MatchTypeSemantic marks a vector hit carrying its cosine
	// similarity.
	MatchTypeSemantic MatchType = "semantic"
)

const (
	DefaultLimit = 20

	// embedding generation is the expensive step, cache it longest
	embeddingTTL = time.Hour
	resultTTL    = 5 * time.Minute
)

// Result is one ranked search hit.
type Result struct {
	Record     model.MediaRecord `json:"record"`
	Similarity float64           `json:"similarity"`
	MatchType  MatchType         `json:"match_type"`
}

// CachedHit is what the result cache stores: id and score only, so
// entries stay cheap and hydration always reflects current records.
type CachedHit struct {
	ID         uint      `json:"id"`
	Similarity float64   `json:"similarity"`
	MatchType  MatchType `json:"match_type"`
}

// Embedder produces the query embedding (the AI backend client in
// production).
type Embedder interface {
	EmbedText(ctx context.Context, query string) ([]float32, error)
}

// RecordFinder is the keyword side of hybrid search plus hydration.
type RecordFinder interface {
	KeywordSearch(query string, limit int) ([]model.MediaRecord, error)
	GetByIDs(ids []uint) ([]model.MediaRecord, error)
}

// Engine merges fast keyword lookups with approximate nearest-
// neighbor vector search. It degrades rather than fails: a broken
// embedding path falls back to keyword-only results.
type Engine struct {
	embedder  Embedder
	records   RecordFinder
	vectors   VectorStore
	cache     cache.Store
	threshold float64
	overfetch int
}

func NewEngine(embedder Embedder, records RecordFinder, vectors VectorStore, store cache.Store, threshold float64, overfetch int) *Engine {
	return &Engine{
		embedder:  embedder,
		records:   records,
		vectors:   vectors,
		cache:     store,
		threshold: threshold,
		overfetch: overfetch,
	}
}

func (e *Engine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	normalized := strings.ToLower(query)

	resultKey := fmt.Sprintf("search:%d:%s", limit, normalized)
	if v, ok := e.cache.Get(resultKey); ok {
		if hits, ok := v.([]CachedHit); ok {
			return e.hydrate(hits)
		}
	}

	queryVector := e.embedQuery(ctx, normalized)

	var textRecords []model.MediaRecord
	var vectorHits []VectorHit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := e.records.KeywordSearch(query, limit)
		if err != nil {
			return fmt.Errorf("keyword search failed: %v", err)
		}
		textRecords = recs
		return nil
	})
	if queryVector != nil {
		g.Go(func() error {
			hits, err := e.vectors.Query(gctx, queryVector, limit+e.overfetch, e.threshold)
			if err != nil {
				// best effort: keyword results still go out
				slog.Warn("Vector search failed, returning keyword results only", "err", err)
				return nil
			}
			vectorHits = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := e.merge(textRecords, vectorHits, limit)
	e.cache.Put(resultKey, merged, resultTTL)
	return e.hydrate(merged)
}

// embedQuery returns the cached or freshly generated query embedding,
// or nil when the embedding path is unavailable.
func (e *Engine) embedQuery(ctx context.Context, normalized string) []float32 {
	embeddingKey := "embedding:" + normalized
	if v, ok := e.cache.Get(embeddingKey); ok {
		if vec, ok := v.([]float32); ok {
			return vec
		}
	}

	vec, err := e.embedder.EmbedText(ctx, normalized)
	if err != nil {
		slog.Warn("Failed to embed query, degrading to keyword-only search", "err", err)
		return nil
	}
	e.cache.Put(embeddingKey, vec, embeddingTTL)
	return vec
}

// merge deduplicates by record id. A record found by both sides keeps
// the vector similarity: the fixed 1.0 text score carries no ranking
// information.
func (e *Engine) merge(textRecords []model.MediaRecord, vectorHits []VectorHit, limit int) []CachedHit {
	byID := make(map[uint]CachedHit, len(textRecords)+len(vectorHits))
	for _, rec := range textRecords {
		byID[rec.ID] = CachedHit{ID: rec.ID, Similarity: 1.0, MatchType: MatchTypeText}
	}
	for _, hit := range vectorHits {
		if hit.Similarity < e.threshold {
			continue
		}
		byID[hit.MediaID] = CachedHit{ID: hit.MediaID, Similarity: hit.Similarity, MatchType: MatchTypeSemantic}
	}

	merged := make([]CachedHit, 0, len(byID))
	for _, hit := range byID {
		merged = append(merged, hit)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return merged[i].ID < merged[j].ID
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// hydrate loads full records for cached hits, preserving hit order
// and scores. Records deleted since caching are skipped, as are
// records no longer completed: a stored vector can outlive its
// record's status when a later save fails or a reprocess is underway.
func (e *Engine) hydrate(hits []CachedHit) ([]Result, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ID)
	}
	records, err := e.records.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate search results: %v", err)
	}

	byID := make(map[uint]model.MediaRecord, len(records))
	for _, rec := range records {
		if rec.ProcessingStatus != model.StatusCompleted {
			continue
		}
		byID[rec.ID] = rec
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		rec, ok := byID[hit.ID]
		if !ok {
			continue
		}
		results = append(results, Result{
			Record:     rec,
			Similarity: hit.Similarity,
			MatchType:  hit.MatchType,
		})
	}
	return results, nil
}
