package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ccastromar/meetbot/internal/metrics"
)

// OllamaClient talks to a local Ollama server through /api/chat.
type OllamaClient struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

var _ LLMClient = (*OllamaClient)(nil)

func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		Timeout: 60 * time.Second,
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatChunk struct {
	Message *ollamaMessage `json:"message"`
	Done    bool           `json:"done"`
}

// Chat streams the completion and concatenates the message fragments.
func (c *OllamaClient) Chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	data, err := json.Marshal(ollamaChatRequest{
		Model:    c.Model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   true,
		Options:  ollamaOptions{Temperature: temperature},
	})
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

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.LLMChats.Inc(map[string]string{"provider": "ollama", "outcome": "error"})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMChats.Inc(map[string]string{"provider": "ollama", "outcome": "error"})
		return "", fmt.Errorf("ollama chat failed: status %d, body: %s", resp.StatusCode, string(b))
	}

	dec := json.NewDecoder(resp.Body)
	var out bytes.Buffer

	for {
		var chunk ollamaChatChunk
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			metrics.LLMChats.Inc(map[string]string{"provider": "ollama", "outcome": "error"})
			return "", fmt.Errorf("decode stream: %w", err)
		}

		if chunk.Message != nil {
			out.WriteString(chunk.Message.Content)
		}
		if chunk.Done {
			break
		}
	}

	metrics.LLMChats.Inc(map[string]string{"provider": "ollama", "outcome": "ok"})
	metrics.LLMChatDur.Observe(map[string]string{"provider": "ollama", "outcome": "ok"}, time.Since(start).Seconds())
	return out.String(), nil
}

// Ping checks if Ollama is reachable via GET /api/tags.
func (c *OllamaClient) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "ollama", "outcome": "error"})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.LLMPings.Inc(map[string]string{"provider": "ollama", "outcome": "error"})
		return fmt.Errorf("llm ping failed: status %d", resp.StatusCode)
	}
	metrics.LLMPings.Inc(map[string]string{"provider": "ollama", "outcome": "ok"})
	return nil
}
