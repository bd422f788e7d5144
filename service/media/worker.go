package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/apache/rocketmq-client-go/v2/primitive"

	"media-engine-backend/service/mq"
	"media-engine-backend/service/search"
	"media-engine-backend/service/storage"
)

// Worker consumes pipeline messages off the queue.
type Worker struct {
	orchestrator *Orchestrator
	objects      storage.ObjectStore
	vectors      search.VectorStore
}

func NewWorker(orchestrator *Orchestrator, objects storage.ObjectStore, vectors search.VectorStore) *Worker {
	return &Worker{orchestrator: orchestrator, objects: objects, vectors: vectors}
}

// Register binds the worker's handlers to the media topic.
func (w *Worker) Register() {
	mq.RegisterHandler(mq.TagProcess, w.HandleProcessMessage)
	mq.RegisterHandler(mq.TagDelete, w.HandleDeleteMessage)
}

// HandleProcessMessage runs the processing pipeline for one record. A
// returned error makes the queue redeliver later, up to its cap.
func (w *Worker) HandleProcessMessage(ctx context.Context, msg *primitive.MessageExt) error {
	var payload mq.ProcessPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		// malformed payloads never get better on redelivery
		slog.Error("Dropping malformed process message", "msg_id", msg.MsgId, "err", err)
		return nil
	}
	return w.orchestrator.Process(ctx, payload.MediaID)
}

// HandleDeleteMessage cleans up storage and vectors for a record the
// API already soft-deleted.
func (w *Worker) HandleDeleteMessage(ctx context.Context, msg *primitive.MessageExt) error {
	var payload mq.DeletePayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.Error("Dropping malformed delete message", "msg_id", msg.MsgId, "err", err)
		return nil
	}

	if err := w.vectors.Remove(ctx, payload.MediaID); err != nil {
		return fmt.Errorf("failed to remove vectors for media %d: %v", payload.MediaID, err)
	}
	if payload.ObjectName != "" {
		if err := w.objects.Delete(ctx, payload.ObjectName); err != nil {
			return fmt.Errorf("failed to delete object %s: %v", payload.ObjectName, err)
		}
	}
	slog.Info("Media cleanup finished", "media_id", payload.MediaID)
	return nil
}
