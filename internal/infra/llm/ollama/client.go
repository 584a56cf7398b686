package ollama

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

	"github.com/rayzhou/text-toolkit/pkg/metrics"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 120 * time.Second
)

// GenerateResult is the trimmed completion text plus the usage counters the
// server reports alongside it.
type GenerateResult struct {
	Text  string
	Usage metrics.TokenUsage
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Client performs non-streaming generate requests against a local Ollama server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs an Ollama client. The timeout bounds each generate
// call; it is deliberately generous because local models can be slow.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate sends one prompt and returns the completed text with surrounding
// whitespace removed. Any non-2xx status is an error.
func (c *Client) Generate(ctx context.Context, model, prompt string) (GenerateResult, error) {
	payload, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("encode generate request: %w", err)
	}

	endpoint := c.baseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("request generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return GenerateResult{}, fmt.Errorf("ollama request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return GenerateResult{}, fmt.Errorf("decode generate response: %w", err)
	}
	if out.Response == "" && !out.Done {
		return GenerateResult{}, errors.New("ollama returned an incomplete response")
	}

	return GenerateResult{
		Text: strings.TrimSpace(out.Response),
		Usage: metrics.TokenUsage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}, nil
}
