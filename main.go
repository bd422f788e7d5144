package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"media-engine-backend/config"
	"media-engine-backend/controller"
	"media-engine-backend/dao"
	"media-engine-backend/router"
	"media-engine-backend/service/ai"
	"media-engine-backend/service/cache"
	"media-engine-backend/service/event"
	"media-engine-backend/service/face"
	"media-engine-backend/service/media"
	"media-engine-backend/service/media/analyzer"
	"media-engine-backend/service/mq"
	"media-engine-backend/service/resilience"
	"media-engine-backend/service/search"
	"media-engine-backend/service/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if err := dao.Init(); err != nil {
		return err
	}

	cacheStore := cache.NewMemoryStore()
	states := resilience.NewCacheStateStore(cacheStore)

	retryPolicy := resilience.RetryPolicy{
		MaxAttempts:  uint(config.Cfg.Pipeline.MaxAttempts),
		InitialDelay: config.Cfg.Pipeline.InitialDelay,
		MaxDelay:     config.Cfg.Pipeline.MaxDelay,
		Multiplier:   2.0,
		UseJitter:    true,
	}

	aiClient := ai.NewClient(ai.ClientConfig{
		BaseURL: config.Cfg.AI.BaseURL,
		Timeouts: ai.Timeouts{
			Image:    config.Cfg.AI.ImageTimeout,
			Video:    config.Cfg.AI.VideoTimeout,
			Document: config.Cfg.AI.DocumentTimeout,
			Audio:    config.Cfg.AI.AudioTimeout,
			Embed:    config.Cfg.AI.EmbedTimeout,
		},
		OllamaEnabled:    config.Cfg.AI.OllamaEnabled,
		FailureThreshold: config.Cfg.AI.FailureThreshold,
		RecoveryTimeout:  config.Cfg.AI.RecoveryTimeout,
		Retry:            retryPolicy,
	}, states)

	var enhancer analyzer.Enhancer
	if config.Cfg.AI.OllamaEnabled && config.Cfg.Ollama.Host != "" {
		e, err := analyzer.NewOllamaEnhancer(config.Cfg.Ollama.Host, config.Cfg.Ollama.Model, states, retryPolicy)
		if err != nil {
			return err
		}
		enhancer = e
	}

	milvusStore, err := search.NewMilvusStore(ctx)
	if err != nil {
		return err
	}

	ossStore := storage.NewOSSStore()
	hub := event.NewHub()

	orchestrator := media.NewOrchestrator(media.OrchestratorConfig{
		Records:   dao.MediaStore{},
		Batches:   dao.BatchStore{},
		Objects:   ossStore,
		Vectors:   milvusStore,
		Faces:     face.NewClusterer(dao.FaceStore{}, dao.MediaStore{}),
		Events:    hub,
		Analyzers: analyzer.DefaultRegistry(aiClient, enhancer),
	})

	if err := mq.Init(); err != nil {
		return err
	}
	worker := media.NewWorker(orchestrator, ossStore, milvusStore)
	worker.Register()
	if err := mq.Run(); err != nil {
		return err
	}
	defer mq.Shutdown()

	engine := search.NewEngine(
		aiClient,
		dao.MediaStore{},
		milvusStore,
		cacheStore,
		config.Cfg.Search.SimilarityThreshold,
		config.Cfg.Search.Overfetch,
	)

	controller.Init(ossStore, engine, hub, aiClient)

	r := router.Register()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(config.Cfg.Server.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("Shutting down", "signal", sig.String())
		return nil
	}
}
