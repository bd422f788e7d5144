package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"media-engine-backend/service/resilience"
)

// ServiceName keys the shared circuit protecting the AI backend.
const ServiceName = "ai-backend"

const healthTimeout = 5 * time.Second

// Backend is the inference service consumed by the analyzers and the
// search engine.
type Backend interface {
	AnalyzeImage(ctx context.Context, req AnalyzeImageRequest) (*ImageAnalysis, error)
	AnalyzeVideo(ctx context.Context, req AnalyzeVideoRequest) (*VideoAnalysis, error)
	AnalyzeDocument(ctx context.Context, req AnalyzeDocumentRequest) (*DocumentAnalysis, error)
	TranscribeAudio(ctx context.Context, req TranscribeAudioRequest) (*AudioTranscription, error)
	ExtractEmail(ctx context.Context, req ExtractEmailRequest) (*EmailExtraction, error)
	ExtractArchiveMetadata(ctx context.Context, req ExtractArchiveMetadataRequest) (*ArchiveMetadata, error)
	AnalyzeCodeFile(ctx context.Context, req AnalyzeCodeFileRequest) (*CodeAnalysis, error)
	EmbedText(ctx context.Context, query string) ([]float32, error)
	Health(ctx context.Context) error
}

type Timeouts struct {
	Image    time.Duration
	Video    time.Duration
	Document time.Duration
	Audio    time.Duration
	Embed    time.Duration
}

type ClientConfig struct {
	BaseURL          string
	Timeouts         Timeouts
	OllamaEnabled    bool
	FailureThreshold int
	RecoveryTimeout  time.Duration
	Retry            resilience.RetryPolicy
}

// Client talks to the AI backend over HTTP. Every call goes through
// Retry(CircuitBreaker(request)) so callers inherit the full
// resilience stack; transport errors and 5xx responses are classified
// transient, 4xx permanent.
type Client struct {
	baseURL       string
	ollamaEnabled bool
	timeouts      Timeouts
	httpClient    *http.Client
	breaker       *resilience.CircuitBreaker
	retry         resilience.RetryPolicy
}

var _ Backend = &Client{}

func NewClient(cfg ClientConfig, states resilience.CircuitStateStore) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		ollamaEnabled: cfg.OllamaEnabled,
		timeouts:      cfg.Timeouts,
		// request deadlines come from the per-operation context, video
		// analysis alone can run for minutes
		httpClient: &http.Client{},
		breaker:    resilience.NewCircuitBreaker(ServiceName, states, cfg.FailureThreshold, cfg.RecoveryTimeout),
		retry:      cfg.Retry,
	}
}

// Breaker exposes the circuit for manual reset and status endpoints.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

func (c *Client) AnalyzeImage(ctx context.Context, req AnalyzeImageRequest) (*ImageAnalysis, error) {
	req.UseOllama = req.UseOllama && c.ollamaEnabled
	var resp ImageAnalysis
	if err := c.post(ctx, "/analyze-image", c.opTimeout(c.timeouts.Image, req.UseOllama), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalyzeVideo(ctx context.Context, req AnalyzeVideoRequest) (*VideoAnalysis, error) {
	var resp VideoAnalysis
	if err := c.post(ctx, "/analyze-video", c.timeouts.Video, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalyzeDocument(ctx context.Context, req AnalyzeDocumentRequest) (*DocumentAnalysis, error) {
	req.UseOllama = req.UseOllama && c.ollamaEnabled
	var resp DocumentAnalysis
	if err := c.post(ctx, "/analyze-document", c.opTimeout(c.timeouts.Document, req.UseOllama), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TranscribeAudio(ctx context.Context, req TranscribeAudioRequest) (*AudioTranscription, error) {
	var resp AudioTranscription
	if err := c.post(ctx, "/transcribe-audio", c.timeouts.Audio, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ExtractEmail(ctx context.Context, req ExtractEmailRequest) (*EmailExtraction, error) {
	var resp EmailExtraction
	if err := c.post(ctx, "/extract-email", c.timeouts.Document, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ExtractArchiveMetadata(ctx context.Context, req ExtractArchiveMetadataRequest) (*ArchiveMetadata, error) {
	var resp ArchiveMetadata
	if err := c.post(ctx, "/extract-archive-metadata", c.timeouts.Document, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalyzeCodeFile(ctx context.Context, req AnalyzeCodeFileRequest) (*CodeAnalysis, error) {
	var resp CodeAnalysis
	if err := c.post(ctx, "/analyze-code-file", c.timeouts.Document, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EmbedText(ctx context.Context, query string) ([]float32, error) {
	var resp embedTextResponse
	if err := c.post(ctx, "/embed-text", c.timeouts.Embed, embedTextRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

// Health probes the backend directly; a failing probe is not a
// circuit signal.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// opTimeout doubles the budget when the LLM-enhancement flag is on;
// vision-language passes are far slower than the base models.
func (c *Client) opTimeout(base time.Duration, ollama bool) time.Duration {
	if ollama {
		return 2 * base
	}
	return base
}

func (c *Client) post(ctx context.Context, path string, timeout time.Duration, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request for %s: %v", path, err)
	}

	op := func(ctx context.Context) error {
		return c.doRequest(ctx, path, timeout, payload, respBody)
	}
	return c.retry.Execute(ctx, path, func(ctx context.Context) error {
		return c.breaker.Execute(ctx, op)
	}, nil)
}

func (c *Client) doRequest(ctx context.Context, path string, timeout time.Duration, payload []byte, respBody any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return resilience.Permanent(fmt.Errorf("failed to build request for %s: %v", path, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resilience.Transient(fmt.Errorf("ai backend request %s failed: %v", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resilience.Transient(fmt.Errorf("failed to read response from %s: %v", path, err))
	}

	switch {
	case resp.StatusCode >= 500:
		return resilience.Transient(fmt.Errorf("ai backend %s returned status %d: %s", path, resp.StatusCode, truncateBody(body)))
	case resp.StatusCode >= 400:
		return resilience.Permanent(fmt.Errorf("ai backend %s rejected request with status %d: %s", path, resp.StatusCode, truncateBody(body)))
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return resilience.Permanent(fmt.Errorf("failed to decode response from %s: %v", path, err))
	}
	return nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
