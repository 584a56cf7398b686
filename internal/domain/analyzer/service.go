package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rayzhou/text-toolkit/internal/infra/llm/ollama"
	apperrors "github.com/rayzhou/text-toolkit/pkg/errors"
	"github.com/rayzhou/text-toolkit/pkg/metrics"
)

// Service exposes the text analysis pipeline.
type Service interface {
	Analyze(ctx context.Context, req Request) (Response, error)
}

// GenerateClient is the inference collaborator: one prompt in, one completed
// text out.
type GenerateClient interface {
	Generate(ctx context.Context, model, prompt string) (ollama.GenerateResult, error)
}

// TokenCounter estimates how many model tokens a text occupies. Used only for
// the optional input budget guard.
type TokenCounter interface {
	Count(text string) (int, error)
}

type service struct {
	cfg    Config
	client GenerateClient
	store  Store
	tokens TokenCounter
	logger *slog.Logger
}

// NewService is a wire provider for the analyzer domain. store and tokens may
// be nil, which disables caching and the input budget guard respectively.
func NewService(cfg Config, client GenerateClient, store Store, tokens TokenCounter, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		store:  store,
		tokens: tokens,
		logger: logger.With("component", "analyzer.service"),
	}
}

// Analyze runs the three prompt/call/parse steps in fixed order: summary,
// keywords, sentiment. The calls are sequential and each prompt references
// only the original input; any upstream failure fails the whole request.
func (s *service) Analyze(ctx context.Context, req Request) (Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Response{}, apperrors.Wrap("invalid_input", "text cannot be empty", nil)
	}

	maxWords := req.MaxSummaryWords
	if maxWords <= 0 {
		maxWords = s.cfg.DefaultMaxSummaryWords
	}

	if err := s.checkInputBudget(text); err != nil {
		return Response{}, err
	}

	key := cacheKey(text, maxWords)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	var usage metrics.TokenUsage

	summaryResult, err := s.client.Generate(ctx, s.cfg.Model, buildSummaryPrompt(text, maxWords))
	if err != nil {
		return Response{}, apperrors.Wrap("llm_error", "summary generation failed", err)
	}
	usage.Add(summaryResult.Usage)

	keywordsResult, err := s.client.Generate(ctx, s.cfg.Model, buildKeywordsPrompt(text))
	if err != nil {
		return Response{}, apperrors.Wrap("llm_error", "keyword extraction failed", err)
	}
	usage.Add(keywordsResult.Usage)

	sentimentResult, err := s.client.Generate(ctx, s.cfg.Model, buildSentimentPrompt(text))
	if err != nil {
		return Response{}, apperrors.Wrap("llm_error", "sentiment classification failed", err)
	}
	usage.Add(sentimentResult.Usage)

	resp := Response{
		Summary:   summaryResult.Text,
		Keywords:  parseKeywords(keywordsResult.Text),
		Sentiment: normalizeSentiment(sentimentResult.Text),
	}

	if !usage.IsZero() {
		s.logger.Debug("analysis completed",
			"prompt_tokens", usage.PromptTokens,
			"completion_tokens", usage.CompletionTokens,
			"total_tokens", usage.TotalTokens,
		)
	}

	s.cacheSet(ctx, key, resp)
	return resp, nil
}

func (s *service) checkInputBudget(text string) error {
	if s.cfg.MaxInputTokens <= 0 || s.tokens == nil {
		return nil
	}
	count, err := s.tokens.Count(text)
	if err != nil {
		s.logger.Warn("token count failed, skipping input budget check", "error", err)
		return nil
	}
	if count > s.cfg.MaxInputTokens {
		return apperrors.Wrap("invalid_input",
			fmt.Sprintf("text is too long: %d tokens exceeds the limit of %d", count, s.cfg.MaxInputTokens), nil)
	}
	return nil
}

func (s *service) cacheGet(ctx context.Context, key string) (Response, bool) {
	if s.store == nil || s.cfg.CacheTTL <= 0 {
		return Response{}, false
	}
	cached, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed", "error", err)
		return Response{}, false
	}
	if ok {
		s.logger.Debug("analysis served from cache")
	}
	return cached, ok
}

func (s *service) cacheSet(ctx context.Context, key string, resp Response) {
	if s.store == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.store.Set(ctx, key, resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
}

func buildSummaryPrompt(text string, maxWords int) string {
	return fmt.Sprintf(
		"Summarize the following text in no more than %d words. Use plain English.\n\nTEXT:\n%s",
		maxWords, text,
	)
}

func buildKeywordsPrompt(text string) string {
	return fmt.Sprintf(
		"Extract 5-10 important keywords or key phrases from the text below. "+
			"Return ONLY a JSON array of strings, nothing else.\n\nTEXT:\n%s",
		text,
	)
}

func buildSentimentPrompt(text string) string {
	return fmt.Sprintf(
		"Decide whether the sentiment of the following text is positive, neutral, or negative. "+
			"Answer with ONE WORD: positive, neutral, or negative.\n\nTEXT:\n%s",
		text,
	)
}

// parseKeywords attempts a strict JSON array parse of the model reply. Every
// array element is coerced to its string form, order preserved, no dedup. On
// any parse failure, trailing garbage, or a non-array value it falls back to
// splitting raw on commas, trimming pieces and dropping empty ones.
func parseKeywords(raw string) []string {
	if parsed, ok := parseKeywordArray(raw); ok {
		return parsed
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func parseKeywordArray(raw string) ([]string, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, false
	}
	// Anything after the first JSON value means the reply was not a bare array.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}

	items, ok := value.([]any)
	if !ok {
		return nil, false
	}

	keywords := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			keywords = append(keywords, v)
		case json.Number:
			keywords = append(keywords, v.String())
		default:
			keywords = append(keywords, fmt.Sprintf("%v", v))
		}
	}
	return keywords, true
}

// normalizeSentiment collapses a free-form reply to one of the three labels.
// Substring checks, not equality: "strongly positive overall" is positive.
func normalizeSentiment(raw string) string {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, SentimentPositive):
		return SentimentPositive
	case strings.Contains(lowered, SentimentNegative):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func cacheKey(text string, maxWords int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", maxWords, text)))
	return hex.EncodeToString(sum[:])
}
