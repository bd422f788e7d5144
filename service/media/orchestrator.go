package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"media-engine-backend/model"
	"media-engine-backend/service/event"
	"media-engine-backend/service/media/analyzer"
	"media-engine-backend/service/storage"
	"media-engine-backend/utils"
)

// Orchestrator drives one uploaded file from pending to a terminal
// state: fetch the object, extract local metadata, dispatch to the
// media-type analyzer, persist the merged result. One call handles
// one queue delivery; redelivery of an already-completed record
// simply re-runs and overwrites.
type Orchestrator struct {
	records   RecordStore
	batches   BatchStore
	objects   storage.ObjectStore
	vectors   VectorSink
	faces     FaceSink
	events    event.Publisher
	analyzers []analyzer.Analyzer
}

type OrchestratorConfig struct {
	Records   RecordStore
	Batches   BatchStore
	Objects   storage.ObjectStore
	Vectors   VectorSink
	Faces     FaceSink
	Events    event.Publisher
	Analyzers []analyzer.Analyzer
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		records:   cfg.Records,
		batches:   cfg.Batches,
		objects:   cfg.Objects,
		vectors:   cfg.Vectors,
		faces:     cfg.Faces,
		events:    cfg.Events,
		analyzers: cfg.Analyzers,
	}
}

// Process runs the full pipeline for one media record. A returned
// error means the record was marked failed and the queue may
// redeliver up to its own attempt cap; analyzer failures inside the
// pipeline degrade instead of erroring.
func (o *Orchestrator) Process(ctx context.Context, mediaID uint) error {
	rec, err := o.records.GetByID(mediaID)
	if err != nil {
		return fmt.Errorf("failed to load media record %d: %v", mediaID, err)
	}
	if rec == nil {
		// deleted or never existed; nothing to do
		slog.Info("Media record gone, skipping", "media_id", mediaID)
		return nil
	}

	// the status this delivery found decides how the batch outcome is
	// recorded: a first delivery consumes the pending slot, a
	// redelivery may only flip the outcome it already recorded
	prev := rec.ProcessingStatus

	started := time.Now()
	rec.ProcessingStatus = model.StatusProcessing
	rec.ProcessingStartedAt = &started
	rec.ProcessingCompletedAt = nil
	rec.ProcessingError = ""
	rec.Attempts++
	if err := o.records.Save(rec); err != nil {
		return fmt.Errorf("failed to mark media %d processing: %v", mediaID, err)
	}

	if err := o.run(ctx, rec, prev); err != nil {
		o.markFailed(rec, prev, err)
		return err
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, rec *model.MediaRecord, prev model.ProcessingStatus) error {
	localPath, err := o.objects.Fetch(ctx, rec.ObjectName)
	if err != nil {
		return fmt.Errorf("failed to fetch media object %s: %v", rec.ObjectName, err)
	}
	defer os.Remove(localPath)

	extractMetadata(rec, localPath)

	res := o.analyze(ctx, rec, localPath)
	applyResult(rec, res)

	if o.vectors != nil && len(res.Embedding) > 0 {
		if err := o.vectors.Upsert(ctx, rec.ID, res.Embedding, res.Description); err != nil {
			return fmt.Errorf("failed to store embedding for media %d: %v", rec.ID, err)
		}
		rec.EmbeddingDim = len(res.Embedding)
	}

	completed := time.Now()
	rec.ProcessingStatus = model.StatusCompleted
	rec.ProcessingError = ""
	rec.ProcessingCompletedAt = &completed
	if err := o.records.Save(rec); err != nil {
		return fmt.Errorf("failed to persist results for media %d: %v", rec.ID, err)
	}

	slog.Info("Media processed",
		"media_id", rec.ID,
		"media_type", rec.MediaType,
		"attempts", rec.Attempts,
		"degraded", res.Degraded,
	)

	if o.faces != nil && res.FaceCount > 0 {
		o.faces.Cluster(ctx, rec.ID, res.FaceEncodings)
	}
	o.recordBatchOutcome(rec, prev, true)
	o.publish(rec)
	return nil
}

// analyze dispatches on media type. A failing analyzer produces the
// degraded filename-only result rather than failing the job.
func (o *Orchestrator) analyze(ctx context.Context, rec *model.MediaRecord, localPath string) *analyzer.Result {
	for _, a := range o.analyzers {
		if !a.CanProcess(rec.MediaType) {
			continue
		}
		res, err := a.Analyze(ctx, rec, localPath)
		if err != nil {
			slog.Error("Analysis failed, falling back to degraded result",
				"media_id", rec.ID,
				"media_type", rec.MediaType,
				"err", err,
			)
			return analyzer.DegradedResult(rec)
		}
		return res
	}
	return analyzer.DegradedResult(rec)
}

func (o *Orchestrator) markFailed(rec *model.MediaRecord, prev model.ProcessingStatus, cause error) {
	completed := time.Now()
	rec.ProcessingStatus = model.StatusFailed
	rec.ProcessingError = utils.SanitizeErrorMessage(cause.Error())
	rec.ProcessingCompletedAt = &completed

	if err := o.records.Save(rec); err != nil {
		slog.Error("Failed to persist failed status", "media_id", rec.ID, "err", err)
	}
	slog.Error("Media processing failed",
		"media_id", rec.ID,
		"attempts", rec.Attempts,
		"err", cause,
	)
	o.recordBatchOutcome(rec, prev, false)
	o.publish(rec)
}

// recordBatchOutcome keeps the owning batch at one outcome per file
// across queue redeliveries. The first terminal state consumes the
// file's pending slot; a redelivery that lands on the same state is a
// no-op, one that lands on the other state flips the recorded
// outcome.
func (o *Orchestrator) recordBatchOutcome(rec *model.MediaRecord, prev model.ProcessingStatus, success bool) {
	if o.batches == nil || rec.BatchID == nil {
		return
	}

	var err error
	switch prev {
	case model.StatusCompleted, model.StatusFailed:
		if (prev == model.StatusCompleted) == success {
			return
		}
		err = o.batches.ReplaceOutcome(*rec.BatchID, success)
	default:
		err = o.batches.RecordOutcome(*rec.BatchID, success)
	}
	if err != nil {
		slog.Error("Failed to update batch counters",
			"batch_id", *rec.BatchID,
			"media_id", rec.ID,
			"err", err,
		)
	}
}

func (o *Orchestrator) publish(rec *model.MediaRecord) {
	if o.events != nil {
		o.events.Publish(rec)
	}
}

func applyResult(rec *model.MediaRecord, res *analyzer.Result) {
	rec.Description = res.Description
	rec.DetailedDescription = res.DetailedDescription
	rec.Tags = res.Tags
	rec.ExtractedText = res.ExtractedText
	rec.FaceCount = res.FaceCount
	rec.Language = res.Language
	rec.DocumentType = res.DocumentType
	rec.ClassificationConfidence = res.ClassificationConfidence
	if res.DurationSeconds > 0 {
		rec.DurationSeconds = res.DurationSeconds
	}
	if res.PageCount > 0 {
		rec.PageCount = res.PageCount
	}
	if res.ThumbnailPath != "" {
		rec.ThumbnailObject = res.ThumbnailPath
	}
}
