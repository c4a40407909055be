package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"activity-reports/internal/logger"
)

// systemInstruction pins the generator to structured output. Models drift
// into prose without it; the normalizer cleans up what still leaks through.
const systemInstruction = "You are a professional activity report analyzer. Return valid JSON only."

// Client talks to an OpenAI-compatible chat-completions endpoint. It is the
// only component that knows the generation wire format.
type Client struct {
	Endpoint    string // base URL, e.g. http://localhost:1234/v1
	APIKey      string // optional; local endpoints usually need none
	Model       string
	Temperature float64
	MaxTokens   int

	httpClient *http.Client
}

func NewClient(endpoint, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Client{
		Endpoint:    endpoint,
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt and returns the raw text content of the first
// choice. It makes at most maxRetries+1 attempts; any non-success status,
// malformed envelope or missing content counts as a retryable failure.
// Retries are immediate. On exhaustion it returns a *GenerateError wrapping
// the last attempt's error.
func (c *Client) Generate(ctx context.Context, prompt string, maxRetries int) (string, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	attempts := maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.callAPI(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err
		logger.GetLogger().Warnf("Generation attempt %d/%d failed: %v", attempt, attempts, err)

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}

	return "", &GenerateError{Attempts: attempts, Err: lastErr}
}

func (c *Client) callAPI(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Stream:      false,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.Endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := chatResp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}

	return content, nil
}
