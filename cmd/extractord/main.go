package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/hoadon-ai/extractor/internal/common"
	"github.com/hoadon-ai/extractor/internal/export"
	"github.com/hoadon-ai/extractor/internal/llm/openai"
	"github.com/hoadon-ai/extractor/internal/normalize"
	"github.com/hoadon-ai/extractor/internal/pipeline"
	"github.com/hoadon-ai/extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	processor := pipeline.NewProcessor(logger, pipeline.Config{StrictSchema: cfg.LLM.StrictSchema},
		normalize.NewNormalizer(logger), client)
	exporter := export.NewService(logger)

	srv := server.New(logger, processor, exporter, cfg.Server.MaxUploadMB)
	logger.Info("http serving", "addr", cfg.Server.Addr, "model", cfg.LLM.Model)
	if err := srv.Router().Run(cfg.Server.Addr); err != nil {
		logger.Error("http serve", "error", err)
		os.Exit(1)
	}
}
