package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ccastromar/meetbot/internal/metrics"
)

// GoOpenAIClient is the SDK-backed provider. It speaks the same protocol as
// OpenAIClient and is selected with LLM_PROVIDER=goopenai.
type GoOpenAIClient struct {
	client  *openai.Client
	model   string
	Timeout time.Duration
}

var _ LLMClient = (*GoOpenAIClient)(nil)

// NewGoOpenAIClient builds a client against baseURL (OpenRouter when empty).
// httpClient may be nil.
func NewGoOpenAIClient(baseURL, apiKey, model string, httpClient *http.Client) *GoOpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	cfg.BaseURL = baseURL
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &GoOpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		Timeout: 60 * time.Second,
	}
}

func (c *GoOpenAIClient) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.client.ListModels(ctx); err != nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "goopenai", "outcome": "error"})
		return err
	}
	metrics.LLMPings.Inc(map[string]string{"provider": "goopenai", "outcome": "ok"})
	return nil
}

func (c *GoOpenAIClient) Chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// Temperature is omitempty in go-openai, so 0 is not sent and the
		// server default (1.0 for OpenAI) applies. Use the openai provider
		// when a zero temperature matters.
		Temperature: float32(temperature),
	})
	if err != nil {
		metrics.LLMChats.Inc(map[string]string{"provider": "goopenai", "outcome": "error"})
		return "", err
	}
	if len(resp.Choices) == 0 {
		metrics.LLMChats.Inc(map[string]string{"provider": "goopenai", "outcome": "error"})
		return "", errors.New("openai: empty response")
	}

	metrics.LLMChats.Inc(map[string]string{"provider": "goopenai", "outcome": "ok"})
	metrics.LLMChatDur.Observe(map[string]string{"provider": "goopenai", "outcome": "ok"}, time.Since(start).Seconds())
	return resp.Choices[0].Message.Content, nil
}
