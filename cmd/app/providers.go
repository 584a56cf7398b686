package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
	"github.com/rayzhou/text-toolkit/internal/infra/config"
	"github.com/rayzhou/text-toolkit/internal/infra/llm/ollama"
	"github.com/rayzhou/text-toolkit/internal/infra/resultcache"
	"github.com/rayzhou/text-toolkit/internal/infra/tokenizer"
)

func provideAnalyzerConfig(cfg *config.Config) analyzer.Config {
	out := analyzer.Config{
		Model:                  cfg.Ollama.Model,
		DefaultMaxSummaryWords: cfg.Analyzer.DefaultMaxSummaryWords,
		MaxInputTokens:         cfg.Analyzer.MaxInputTokens,
	}
	if cfg.Cache.Enabled {
		out.CacheTTL = cfg.Cache.TTL
	}
	return out
}

func provideOllamaClient(cfg *config.Config) *ollama.Client {
	return ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Timeout)
}

func provideResultStore(cfg *config.Config, logger *slog.Logger) analyzer.Store {
	if !cfg.Cache.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return resultcache.NewMemoryStore()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return resultcache.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		return resultcache.NewMemoryStore()
	}
	logger.Info("valkey result cache enabled", "addr", cfg.Cache.Addr)
	return resultcache.NewValkeyStore(client, "analysis")
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) analyzer.TokenCounter {
	if cfg.Analyzer.MaxInputTokens <= 0 {
		return nil
	}
	counter, err := tokenizer.New("cl100k_base")
	if err != nil {
		logger.Error("failed to load tokenizer, input budget guard disabled", "error", err)
		return nil
	}
	return counter
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}
