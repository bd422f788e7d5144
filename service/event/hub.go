package event

import (
	"log/slog"
	"sync"

	"media-engine-backend/model"
)

const subscriberBuffer = 16

// Publisher is what the orchestrator sees: fire-and-forget emission
// of "media processed" events.
type Publisher interface {
	Publish(rec *model.MediaRecord)
}

// Hub fans processed-media events out to live subscribers (the
// websocket status feed). Slow subscribers drop events rather than
// blocking the pipeline.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan *model.MediaRecord]struct{}
}

var _ Publisher = &Hub{}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan *model.MediaRecord]struct{}),
	}
}

func (h *Hub) Subscribe() (<-chan *model.MediaRecord, func()) {
	ch := make(chan *model.MediaRecord, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Publish(rec *model.MediaRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- rec:
		default:
			slog.Warn("Dropping media event for slow subscriber", "media_id", rec.ID)
		}
	}
}
