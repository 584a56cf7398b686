package unit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
	"github.com/rayzhou/text-toolkit/internal/infra/llm/ollama"
	"github.com/rayzhou/text-toolkit/internal/infra/resultcache"
	apperrors "github.com/rayzhou/text-toolkit/pkg/errors"
)

func TestAnalyzeAssemblesThreeResults(t *testing.T) {
	client := &stubGenerateClient{
		responses: []string{
			"Employees largely welcomed the new policy.",
			`["policy", "employees"]`,
			"positive",
		},
	}
	svc := analyzer.NewService(testConfig(), client, nil, nil, newTestLogger())

	resp, err := svc.Analyze(context.Background(), analyzer.Request{
		Text: "The new policy was well received by most employees.",
	})
	require.NoError(t, err)
	require.Equal(t, "Employees largely welcomed the new policy.", resp.Summary)
	require.Equal(t, []string{"policy", "employees"}, resp.Keywords)
	require.Equal(t, analyzer.SentimentPositive, resp.Sentiment)

	require.Len(t, client.prompts, 3)
	require.Contains(t, client.prompts[0], "no more than 80 words")
	require.Contains(t, client.prompts[1], "JSON array of strings")
	require.Contains(t, client.prompts[2], "ONE WORD")
	for _, prompt := range client.prompts {
		require.Contains(t, prompt, "The new policy was well received by most employees.")
	}
	require.Equal(t, []string{"llama3", "llama3", "llama3"}, client.models)
}

func TestAnalyzeRejectsEmptyText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: " \t\n "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := &stubGenerateClient{}
			svc := analyzer.NewService(testConfig(), client, nil, nil, newTestLogger())

			_, err := svc.Analyze(context.Background(), analyzer.Request{Text: tt.text})
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Empty(t, client.prompts, "no inference call may be issued for invalid input")
		})
	}
}

func TestAnalyzeUsesRequestedWordCap(t *testing.T) {
	client := &stubGenerateClient{responses: []string{"s", "[]", "neutral"}}
	svc := analyzer.NewService(testConfig(), client, nil, nil, newTestLogger())

	_, err := svc.Analyze(context.Background(), analyzer.Request{Text: "some text", MaxSummaryWords: 25})
	require.NoError(t, err)
	require.Contains(t, client.prompts[0], "no more than 25 words")
}

func TestAnalyzeDefaultsNonPositiveWordCap(t *testing.T) {
	client := &stubGenerateClient{responses: []string{"s", "[]", "neutral"}}
	svc := analyzer.NewService(testConfig(), client, nil, nil, newTestLogger())

	_, err := svc.Analyze(context.Background(), analyzer.Request{Text: "some text", MaxSummaryWords: -3})
	require.NoError(t, err)
	require.Contains(t, client.prompts[0], "no more than 80 words")
}

func TestAnalyzeFailsWholeRequestOnInferenceError(t *testing.T) {
	client := &stubGenerateClient{
		responses: []string{"a fine summary"},
		failAt:    2,
	}
	svc := analyzer.NewService(testConfig(), client, nil, nil, newTestLogger())

	resp, err := svc.Analyze(context.Background(), analyzer.Request{Text: "some text"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "llm_error"))
	require.Equal(t, analyzer.Response{}, resp, "no partial results on failure")
	require.Len(t, client.prompts, 2, "pipeline stops at the failing call")
}

func TestAnalyzeServesRepeatInputFromCache(t *testing.T) {
	client := &stubGenerateClient{
		responses: []string{"summary", `["alpha"]`, "negative"},
	}
	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	svc := analyzer.NewService(cfg, client, resultcache.NewMemoryStore(), nil, newTestLogger())

	req := analyzer.Request{Text: "cache me"}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, client.prompts, 3)

	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, client.prompts, 3, "cache hit must not reach the inference server")
}

func TestAnalyzeEnforcesInputTokenBudget(t *testing.T) {
	client := &stubGenerateClient{}
	cfg := testConfig()
	cfg.MaxInputTokens = 10
	svc := analyzer.NewService(cfg, client, nil, fixedTokenCounter(50), newTestLogger())

	_, err := svc.Analyze(context.Background(), analyzer.Request{Text: "a very long text"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	require.Empty(t, client.prompts)
}

func TestAnalyzeSkipsBudgetWhenCounterFails(t *testing.T) {
	client := &stubGenerateClient{responses: []string{"s", "[]", "neutral"}}
	cfg := testConfig()
	cfg.MaxInputTokens = 10
	svc := analyzer.NewService(cfg, client, nil, failingTokenCounter{}, newTestLogger())

	_, err := svc.Analyze(context.Background(), analyzer.Request{Text: "some text"})
	require.NoError(t, err)
	require.Len(t, client.prompts, 3)
}

func testConfig() analyzer.Config {
	return analyzer.Config{
		Model:                  "llama3",
		DefaultMaxSummaryWords: 80,
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubGenerateClient struct {
	prompts   []string
	models    []string
	responses []string
	failAt    int
}

func (s *stubGenerateClient) Generate(_ context.Context, model, prompt string) (ollama.GenerateResult, error) {
	s.models = append(s.models, model)
	s.prompts = append(s.prompts, prompt)
	call := len(s.prompts)
	if s.failAt > 0 && call == s.failAt {
		return ollama.GenerateResult{}, errors.New("connection refused")
	}
	if call > len(s.responses) {
		return ollama.GenerateResult{}, errors.New("unexpected extra inference call")
	}
	return ollama.GenerateResult{Text: s.responses[call-1]}, nil
}

type fixedTokenCounter int

func (c fixedTokenCounter) Count(string) (int, error) { return int(c), nil }

type failingTokenCounter struct{}

func (failingTokenCounter) Count(string) (int, error) {
	return 0, errors.New("encoding unavailable")
}
