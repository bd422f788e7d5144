package config

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Cfg is the global configuration, loaded once at startup.
var Cfg Config

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	MQ       MQConfig       `yaml:"mq"`
	Milvus   MilvusConfig   `yaml:"milvus"`
	OSS      OSSConfig      `yaml:"oss"`
	JWT      JWTConfig      `yaml:"jwt"`
	AI       AIConfig       `yaml:"ai"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Search   SearchConfig   `yaml:"search"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	ScratchDir string `yaml:"scratch_dir"`
}

type DBConfig struct {
	DSN string `yaml:"dsn"`
}

type MQConfig struct {
	NameServer []string `yaml:"name_server"`
}

type MilvusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

type OSSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	BucketName      string `yaml:"bucket_name"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// AIConfig configures the external AI inference service.
// Timeouts are per operation; LLM-enhanced requests run with
// the timeout doubled because vision models are much slower.
type AIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	EmbeddingDim     int           `yaml:"embedding_dim"`
	ImageTimeout     time.Duration `yaml:"image_timeout"`
	VideoTimeout     time.Duration `yaml:"video_timeout"`
	DocumentTimeout  time.Duration `yaml:"document_timeout"`
	AudioTimeout     time.Duration `yaml:"audio_timeout"`
	EmbedTimeout     time.Duration `yaml:"embed_timeout"`
	OllamaEnabled    bool          `yaml:"ollama_enabled"`
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type PipelineConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

type SearchConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	Overfetch           int     `yaml:"overfetch"`
}

func init() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing config file is tolerated so unit tests can import
		// packages without a deployment config present.
		slog.Warn("Config file not loaded, using zero values", "path", path, "err", err)
		applyDefaults()
		return
	}

	if err := yaml.Unmarshal(data, &Cfg); err != nil {
		panic("failed to parse config file: " + err.Error())
	}
	applyDefaults()
}

func applyDefaults() {
	if Cfg.Server.Addr == "" {
		Cfg.Server.Addr = ":8080"
	}
	if Cfg.Server.ScratchDir == "" {
		Cfg.Server.ScratchDir = os.TempDir()
	}
	if Cfg.Milvus.Collection == "" {
		Cfg.Milvus.Collection = "media_embedding"
	}
	if Cfg.AI.EmbeddingDim == 0 {
		Cfg.AI.EmbeddingDim = 1024
	}
	if Cfg.AI.ImageTimeout == 0 {
		Cfg.AI.ImageTimeout = 60 * time.Second
	}
	if Cfg.AI.VideoTimeout == 0 {
		Cfg.AI.VideoTimeout = 300 * time.Second
	}
	if Cfg.AI.DocumentTimeout == 0 {
		Cfg.AI.DocumentTimeout = 120 * time.Second
	}
	if Cfg.AI.AudioTimeout == 0 {
		Cfg.AI.AudioTimeout = 180 * time.Second
	}
	if Cfg.AI.EmbedTimeout == 0 {
		Cfg.AI.EmbedTimeout = 30 * time.Second
	}
	if Cfg.AI.FailureThreshold == 0 {
		Cfg.AI.FailureThreshold = 5
	}
	if Cfg.AI.RecoveryTimeout == 0 {
		Cfg.AI.RecoveryTimeout = 60 * time.Second
	}
	if Cfg.Pipeline.MaxAttempts == 0 {
		Cfg.Pipeline.MaxAttempts = 3
	}
	if Cfg.Pipeline.InitialDelay == 0 {
		Cfg.Pipeline.InitialDelay = time.Second
	}
	if Cfg.Pipeline.MaxDelay == 0 {
		Cfg.Pipeline.MaxDelay = 30 * time.Second
	}
	if Cfg.Search.SimilarityThreshold == 0 {
		Cfg.Search.SimilarityThreshold = 0.15
	}
	if Cfg.Search.Overfetch == 0 {
		Cfg.Search.Overfetch = 20
	}
}
