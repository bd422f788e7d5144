package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"media-engine-backend/service/resilience"
)

// EnhancerServiceName keys the enhancement circuit. The Ollama
// summarizer is tracked independently from the primary AI backend:
// a down LLM must not trip the circuit the analyzers depend on.
const EnhancerServiceName = "ollama-enhance"

const enhanceTimeout = 120 * time.Second

// Enhancer turns per-frame scene captions into one coherent summary
// paragraph.
type Enhancer interface {
	Enhance(ctx context.Context, sceneDescriptions []string) (string, error)
}

type OllamaEnhancer struct {
	llm     llms.Model
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryPolicy
}

var _ Enhancer = &OllamaEnhancer{}

func NewOllamaEnhancer(host, modelName string, states resilience.CircuitStateStore, retry resilience.RetryPolicy) (*OllamaEnhancer, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(host),
		ollama.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %v", err)
	}
	return &OllamaEnhancer{
		llm:     llm,
		breaker: resilience.NewCircuitBreaker(EnhancerServiceName, states, 0, 0),
		retry:   retry,
	}, nil
}

func (e *OllamaEnhancer) Enhance(ctx context.Context, sceneDescriptions []string) (string, error) {
	prompt := fmt.Sprintf(
		"The following are captions of consecutive scenes from one video:\n%s\n\n"+
			"Write a single coherent paragraph describing what happens in the video. "+
			"Answer with the paragraph only.",
		strings.Join(sceneDescriptions, "\n"),
	)

	var summary string
	err := e.retry.Execute(ctx, "enhance-video-summary", func(ctx context.Context) error {
		return e.breaker.Execute(ctx, func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, enhanceTimeout)
			defer cancel()

			resp, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt)
			if err != nil {
				return resilience.Transient(fmt.Errorf("llm call error: %w", err))
			}
			summary = strings.TrimSpace(resp)
			return nil
		})
	}, nil)
	if err != nil {
		return "", err
	}
	return summary, nil
}
