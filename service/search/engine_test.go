package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-engine-backend/model"
	"media-engine-backend/service/cache"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

type fakeFinder struct {
	keyword      []model.MediaRecord
	records      map[uint]model.MediaRecord
	keywordCalls int
}

func (f *fakeFinder) KeywordSearch(string, int) ([]model.MediaRecord, error) {
	f.keywordCalls++
	return f.keyword, nil
}

func (f *fakeFinder) GetByIDs(ids []uint) ([]model.MediaRecord, error) {
	var recs []model.MediaRecord
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

type fakeVectors struct {
	hits  []VectorHit
	err   error
	calls int
}

func (f *fakeVectors) Upsert(context.Context, uint, []float32, string) error { return nil }
func (f *fakeVectors) Remove(context.Context, uint) error                    { return nil }

func (f *fakeVectors) Query(context.Context, []float32, int, float64) ([]VectorHit, error) {
	f.calls++
	return f.hits, f.err
}

func completedRecord(id uint, name string) model.MediaRecord {
	return model.MediaRecord{
		ID:               id,
		FileName:         name,
		ProcessingStatus: model.StatusCompleted,
	}
}

func recordMap(recs ...model.MediaRecord) map[uint]model.MediaRecord {
	m := make(map[uint]model.MediaRecord)
	for _, rec := range recs {
		m[rec.ID] = rec
	}
	return m
}

func TestSearchMergesAndPrefersVectorSimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.2}}
	finder := &fakeFinder{
		keyword: []model.MediaRecord{completedRecord(1, "beach.jpg"), completedRecord(2, "beach_house.jpg")},
		records: recordMap(completedRecord(1, "beach.jpg"), completedRecord(2, "beach_house.jpg"), completedRecord(3, "coast.jpg")),
	}
	vectors := &fakeVectors{hits: []VectorHit{{MediaID: 1, Similarity: 0.8}, {MediaID: 3, Similarity: 0.5}}}
	engine := NewEngine(embedder, finder, vectors, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "beach", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// record 1 appears exactly once, carrying the vector similarity
	assert.Equal(t, uint(2), results[0].Record.ID)
	assert.Equal(t, 1.0, results[0].Similarity)
	assert.Equal(t, MatchTypeText, results[0].MatchType)

	assert.Equal(t, uint(1), results[1].Record.ID)
	assert.Equal(t, 0.8, results[1].Similarity)
	assert.Equal(t, MatchTypeSemantic, results[1].MatchType)

	assert.Equal(t, uint(3), results[2].Record.ID)
	assert.Equal(t, 0.5, results[2].Similarity)
}

func TestSearchFiltersBelowThreshold(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	finder := &fakeFinder{records: recordMap(completedRecord(7, "noise.jpg"))}
	vectors := &fakeVectors{hits: []VectorHit{{MediaID: 7, Similarity: 0.1}}}
	engine := NewEngine(embedder, finder, vectors, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchResultCacheRoundTrip(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	finder := &fakeFinder{
		keyword: []model.MediaRecord{completedRecord(1, "dog.jpg")},
		records: recordMap(completedRecord(1, "dog.jpg"), completedRecord(2, "puppy.jpg")),
	}
	vectors := &fakeVectors{hits: []VectorHit{{MediaID: 2, Similarity: 0.6}}}
	engine := NewEngine(embedder, finder, vectors, cache.NewMemoryStore(), 0.15, 20)

	first, err := engine.Search(context.Background(), "dog", 5)
	require.NoError(t, err)

	second, err := engine.Search(context.Background(), "dog", 5)
	require.NoError(t, err)

	// the repeat came from the result cache, no second round of queries
	assert.Equal(t, 1, vectors.calls)
	assert.Equal(t, 1, finder.keywordCalls)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Record.ID, second[i].Record.ID)
		assert.Equal(t, first[i].Similarity, second[i].Similarity)
	}
}

func TestSearchDegradesToKeywordOnEmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embed-text: status 503")}
	finder := &fakeFinder{
		keyword: []model.MediaRecord{completedRecord(4, "cat.jpg")},
		records: recordMap(completedRecord(4, "cat.jpg")),
	}
	vectors := &fakeVectors{}
	engine := NewEngine(embedder, finder, vectors, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "cat", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, MatchTypeText, results[0].MatchType)
	assert.Equal(t, 1.0, results[0].Similarity)
	assert.Zero(t, vectors.calls, "vector search must be skipped without an embedding")
}

func TestSearchEmbeddingCacheSharedAcrossLimits(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.3}}
	finder := &fakeFinder{records: recordMap()}
	engine := NewEngine(embedder, finder, &fakeVectors{}, cache.NewMemoryStore(), 0.15, 20)

	_, err := engine.Search(context.Background(), "Sunset", 5)
	require.NoError(t, err)
	_, err = engine.Search(context.Background(), "  sunset ", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls, "normalized query embedding must be reused")
}

func TestSearchEmptyQuery(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeFinder{}, &fakeVectors{}, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSearchTruncatesToLimit(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	recs := recordMap()
	var hits []VectorHit
	for id := uint(1); id <= 10; id++ {
		rec := completedRecord(id, "file.jpg")
		recs[id] = rec
		hits = append(hits, VectorHit{MediaID: id, Similarity: 0.2 + float64(id)*0.05})
	}
	finder := &fakeFinder{records: recs}
	engine := NewEngine(embedder, finder, &fakeVectors{hits: hits}, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "many", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// descending similarity
	assert.True(t, results[0].Similarity >= results[1].Similarity)
	assert.True(t, results[1].Similarity >= results[2].Similarity)
}

func TestHydrateSkipsNonCompletedRecords(t *testing.T) {
	failed := completedRecord(8, "stale.jpg")
	failed.ProcessingStatus = model.StatusFailed
	reprocessing := completedRecord(9, "inflight.jpg")
	reprocessing.ProcessingStatus = model.StatusProcessing

	embedder := &fakeEmbedder{vec: []float32{0.1}}
	finder := &fakeFinder{
		// ids 8 and 9 still have live vectors from an earlier run but
		// their records are no longer completed
		records: recordMap(failed, reprocessing, completedRecord(10, "good.jpg")),
	}
	vectors := &fakeVectors{hits: []VectorHit{
		{MediaID: 8, Similarity: 0.9},
		{MediaID: 9, Similarity: 0.8},
		{MediaID: 10, Similarity: 0.7},
	}}
	engine := NewEngine(embedder, finder, vectors, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "stale", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(10), results[0].Record.ID)
}

func TestHydrateSkipsDeletedRecords(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	finder := &fakeFinder{
		keyword: []model.MediaRecord{completedRecord(1, "gone.jpg"), completedRecord(2, "kept.jpg")},
		// record 1 was deleted between caching and hydration
		records: recordMap(completedRecord(2, "kept.jpg")),
	}
	engine := NewEngine(embedder, finder, &fakeVectors{}, cache.NewMemoryStore(), 0.15, 20)

	results, err := engine.Search(context.Background(), "file", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(2), results[0].Record.ID)
}
