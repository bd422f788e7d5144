package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-engine-backend/model"
	"media-engine-backend/service/media/analyzer"
)

type fakeRecords struct {
	recs map[uint]*model.MediaRecord
}

func (f *fakeRecords) GetByID(id uint) (*model.MediaRecord, error) {
	return f.recs[id], nil
}

func (f *fakeRecords) Save(rec *model.MediaRecord) error {
	f.recs[rec.ID] = rec
	return nil
}

type fakeObjects struct {
	t   *testing.T
	err error
}

func (f *fakeObjects) Fetch(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.t.TempDir(), "scratch.bin")
	require.NoError(f.t, os.WriteFile(path, []byte("payload"), 0o644))
	return path, nil
}

func (f *fakeObjects) Delete(context.Context, string) error { return nil }

func (f *fakeObjects) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func (f *fakeObjects) PresignPut(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

type fakeVectorSink struct {
	upserts map[uint][]float32
	err     error
}

func (f *fakeVectorSink) Upsert(_ context.Context, mediaID uint, vector []float32, _ string) error {
	if f.err != nil {
		return f.err
	}
	if f.upserts == nil {
		f.upserts = make(map[uint][]float32)
	}
	f.upserts[mediaID] = vector
	return nil
}

type fakeBatches struct {
	outcomes []bool
	flips    []bool
}

func (f *fakeBatches) RecordOutcome(_ uint, success bool) error {
	f.outcomes = append(f.outcomes, success)
	return nil
}

func (f *fakeBatches) ReplaceOutcome(_ uint, success bool) error {
	f.flips = append(f.flips, success)
	return nil
}

type fakeEvents struct {
	published []*model.MediaRecord
}

func (f *fakeEvents) Publish(rec *model.MediaRecord) {
	f.published = append(f.published, rec)
}

type fakeFaces struct {
	calls int
}

func (f *fakeFaces) Cluster(context.Context, uint, [][]float64) {
	f.calls++
}

type stubAnalyzer struct {
	res *analyzer.Result
	err error
}

func (s *stubAnalyzer) CanProcess(model.MediaType) bool {
	return true
}

func (s *stubAnalyzer) Analyze(context.Context, *model.MediaRecord, string) (*analyzer.Result, error) {
	return s.res, s.err
}

func pendingRecord(id uint, mediaType model.MediaType, name string) *model.MediaRecord {
	batchID := uint(9)
	return &model.MediaRecord{
		ID:               id,
		BatchID:          &batchID,
		UserEmail:        "user@example.com",
		FileName:         name,
		MediaType:        mediaType,
		ObjectName:       "user@example.com/" + name,
		ProcessingStatus: model.StatusPending,
	}
}

type orchestratorFixture struct {
	orch    *Orchestrator
	records *fakeRecords
	vectors *fakeVectorSink
	batches *fakeBatches
	events  *fakeEvents
	faces   *fakeFaces
}

func newFixture(t *testing.T, a analyzer.Analyzer, objects *fakeObjects) *orchestratorFixture {
	f := &orchestratorFixture{
		records: &fakeRecords{recs: make(map[uint]*model.MediaRecord)},
		vectors: &fakeVectorSink{},
		batches: &fakeBatches{},
		events:  &fakeEvents{},
		faces:   &fakeFaces{},
	}
	if objects == nil {
		objects = &fakeObjects{t: t}
	}
	f.orch = NewOrchestrator(OrchestratorConfig{
		Records:   f.records,
		Batches:   f.batches,
		Objects:   objects,
		Vectors:   f.vectors,
		Faces:     f.faces,
		Events:    f.events,
		Analyzers: []analyzer.Analyzer{a},
	})
	return f
}

func TestProcessCompletesJob(t *testing.T) {
	a := &stubAnalyzer{res: &analyzer.Result{
		Description:   "a golden retriever on a beach",
		Tags:          []string{"dog", "beach"},
		Embedding:     []float32{0.1, 0.2, 0.3, 0.4},
		FaceCount:     2,
		FaceEncodings: [][]float64{{0.5}, {0.6}},
	}}
	f := newFixture(t, a, nil)
	f.records.recs[1] = pendingRecord(1, model.MediaTypeImage, "dog.jpg")

	require.NoError(t, f.orch.Process(context.Background(), 1))

	rec := f.records.recs[1]
	assert.Equal(t, model.StatusCompleted, rec.ProcessingStatus)
	assert.Empty(t, rec.ProcessingError)
	assert.Equal(t, 1, rec.Attempts)
	require.NotNil(t, rec.ProcessingStartedAt)
	require.NotNil(t, rec.ProcessingCompletedAt)
	assert.Equal(t, "a golden retriever on a beach", rec.Description)
	assert.Equal(t, 4, rec.EmbeddingDim)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, f.vectors.upserts[1])

	assert.Equal(t, []bool{true}, f.batches.outcomes)
	assert.Equal(t, 1, f.faces.calls)
	require.Len(t, f.events.published, 1)
	assert.Equal(t, model.StatusCompleted, f.events.published[0].ProcessingStatus)
}

func TestProcessMissingRecordIsNoop(t *testing.T) {
	f := newFixture(t, &stubAnalyzer{res: &analyzer.Result{}}, nil)
	require.NoError(t, f.orch.Process(context.Background(), 42))
	assert.Empty(t, f.events.published)
}

func TestProcessAnalyzerFailureDegrades(t *testing.T) {
	a := &stubAnalyzer{err: errors.New("analyze-image: status 503")}
	f := newFixture(t, a, nil)
	f.records.recs[2] = pendingRecord(2, model.MediaTypeVideo, "clip.mp4")

	require.NoError(t, f.orch.Process(context.Background(), 2))

	rec := f.records.recs[2]
	assert.Equal(t, model.StatusCompleted, rec.ProcessingStatus, "a failed analysis degrades, it does not fail the job")
	assert.Contains(t, rec.Description, "clip.mp4")
	assert.Zero(t, rec.EmbeddingDim)
	assert.Empty(t, f.vectors.upserts)
	assert.Zero(t, f.faces.calls)
	assert.Equal(t, []bool{true}, f.batches.outcomes)
}

func TestProcessFetchFailureMarksFailed(t *testing.T) {
	objects := &fakeObjects{t: t, err: errors.New("connection \x00refused\x07 by storage")}
	f := newFixture(t, &stubAnalyzer{res: &analyzer.Result{}}, objects)
	f.records.recs[3] = pendingRecord(3, model.MediaTypeImage, "broken.jpg")

	err := f.orch.Process(context.Background(), 3)
	require.Error(t, err, "the failure must propagate for the queue's retry policy")

	rec := f.records.recs[3]
	assert.Equal(t, model.StatusFailed, rec.ProcessingStatus)
	require.NotEmpty(t, rec.ProcessingError)
	assert.NotContains(t, rec.ProcessingError, "\x00")
	assert.NotContains(t, rec.ProcessingError, "\x07")
	assert.Contains(t, rec.ProcessingError, "connection refused")
	require.NotNil(t, rec.ProcessingCompletedAt)
	assert.Equal(t, []bool{false}, f.batches.outcomes)
	require.Len(t, f.events.published, 1)
}

func TestProcessRedeliveryOverwrites(t *testing.T) {
	a := &stubAnalyzer{res: &analyzer.Result{Description: "second pass"}}
	f := newFixture(t, a, nil)

	rec := pendingRecord(4, model.MediaTypeImage, "twice.jpg")
	done := time.Now()
	rec.ProcessingStatus = model.StatusCompleted
	rec.ProcessingCompletedAt = &done
	rec.Description = "first pass"
	rec.Attempts = 1
	f.records.recs[4] = rec

	require.NoError(t, f.orch.Process(context.Background(), 4))

	assert.Equal(t, model.StatusCompleted, rec.ProcessingStatus)
	assert.Equal(t, "second pass", rec.Description)
	assert.Equal(t, 2, rec.Attempts)

	// the first delivery already counted this file
	assert.Empty(t, f.batches.outcomes)
	assert.Empty(t, f.batches.flips)
}

func TestProcessRecoveryFlipsBatchOutcome(t *testing.T) {
	objects := &fakeObjects{t: t, err: errors.New("connection reset by peer")}
	a := &stubAnalyzer{res: &analyzer.Result{Description: "recovered"}}
	f := newFixture(t, a, objects)
	f.records.recs[6] = pendingRecord(6, model.MediaTypeImage, "retry.jpg")

	require.Error(t, f.orch.Process(context.Background(), 6))
	assert.Equal(t, []bool{false}, f.batches.outcomes)

	// the redelivery succeeds: the file's single slot moves from
	// failed to successful instead of consuming a second one
	objects.err = nil
	require.NoError(t, f.orch.Process(context.Background(), 6))

	assert.Equal(t, model.StatusCompleted, f.records.recs[6].ProcessingStatus)
	assert.Equal(t, []bool{false}, f.batches.outcomes)
	assert.Equal(t, []bool{true}, f.batches.flips)
}

func TestProcessRepeatedFailureCountsOnce(t *testing.T) {
	objects := &fakeObjects{t: t, err: errors.New("connection refused")}
	f := newFixture(t, &stubAnalyzer{res: &analyzer.Result{}}, objects)
	f.records.recs[7] = pendingRecord(7, model.MediaTypeImage, "doomed.jpg")

	require.Error(t, f.orch.Process(context.Background(), 7))
	require.Error(t, f.orch.Process(context.Background(), 7))

	assert.Equal(t, []bool{false}, f.batches.outcomes)
	assert.Empty(t, f.batches.flips)
}

func TestProcessVectorStoreFailureMarksFailed(t *testing.T) {
	a := &stubAnalyzer{res: &analyzer.Result{Description: "ok", Embedding: []float32{0.1}}}
	f := newFixture(t, a, nil)
	f.vectors.err = errors.New("milvus unavailable")
	f.records.recs[5] = pendingRecord(5, model.MediaTypeImage, "vec.jpg")

	require.Error(t, f.orch.Process(context.Background(), 5))
	assert.Equal(t, model.StatusFailed, f.records.recs[5].ProcessingStatus)
}
