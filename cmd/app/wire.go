//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/rayzhou/text-toolkit/internal/bootstrap"
	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
	"github.com/rayzhou/text-toolkit/internal/infra/config"
	"github.com/rayzhou/text-toolkit/internal/infra/llm/ollama"
	httpiface "github.com/rayzhou/text-toolkit/internal/interface/http"
	"github.com/rayzhou/text-toolkit/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAnalyzerConfig,
		provideOllamaClient,
		provideResultStore,
		provideTokenCounter,
		analyzer.NewService,
		wire.Bind(new(analyzer.GenerateClient), new(*ollama.Client)),
		httpiface.NewAnalyzeHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
