package controller

import (
	"media-engine-backend/service/ai"
	"media-engine-backend/service/event"
	"media-engine-backend/service/search"
	"media-engine-backend/service/storage"
)

var (
	objects      storage.ObjectStore
	searchEngine *search.Engine
	eventHub     *event.Hub
	aiBackend    *ai.Client
)

// Init wires the handler dependencies once at startup, before the
// router starts serving.
func Init(store storage.ObjectStore, engine *search.Engine, hub *event.Hub, client *ai.Client) {
	objects = store
	searchEngine = engine
	eventHub = hub
	aiBackend = client
}
