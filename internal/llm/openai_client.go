package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ccastromar/meetbot/internal/metrics"
)

// DefaultOpenAIBaseURL points at OpenRouter, which speaks the OpenAI chat
// completions protocol.
const DefaultOpenAIBaseURL = "https://openrouter.ai/api/v1"

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint over
// plain HTTP.
type OpenAIClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
	Timeout time.Duration
}

// Compile-time interface conformance
var _ LLMClient = (*OpenAIClient)(nil)

func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	return &OpenAIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
		},
		Timeout: 60 * time.Second,
	}
}

// Ping lists models to confirm the endpoint accepts our key.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	if c.APIKey == "" {
		return fmt.Errorf("openai api key is empty")
	}

	to := c.Timeout
	if to <= 0 || to > 5*time.Second {
		to = 5 * time.Second
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	url := strings.TrimRight(c.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient(to).Do(req)
	if err != nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return fmt.Errorf("openai ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMPings.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return fmt.Errorf("openai ping bad status: %d, body: %s", resp.StatusCode, string(b))
	}

	metrics.LLMPings.Inc(map[string]string{"provider": "openai", "outcome": "ok"})
	return nil
}

// Chat runs a single non-streaming completion.
func (c *OpenAIClient) Chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("openai api key is empty")
	}

	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient(c.Timeout).Do(req)
	if err != nil {
		metrics.LLMChats.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMChats.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", fmt.Errorf("openai chat failed: status %d, body: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.LLMChats.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		metrics.LLMChats.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", fmt.Errorf("openai: empty response")
	}

	metrics.LLMChats.Inc(map[string]string{"provider": "openai", "outcome": "ok"})
	metrics.LLMChatDur.Observe(map[string]string{"provider": "openai", "outcome": "ok"}, time.Since(start).Seconds())
	return result.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) httpClient(to time.Duration) *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: to}
}
