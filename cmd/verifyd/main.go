package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/thabo-maseko/regverify/internal/common"
	"github.com/thabo-maseko/regverify/internal/metrics"
	"github.com/thabo-maseko/regverify/internal/ocr"
	"github.com/thabo-maseko/regverify/internal/provider"
	"github.com/thabo-maseko/regverify/internal/server"
	"github.com/thabo-maseko/regverify/internal/verify"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	metrics.Register()

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		Timeout:       cfg.OCR.Timeout,
	}, logger)

	// Fixed preference order: OpenAI before Anthropic. Unconfigured providers
	// report unavailable and are skipped by the cascade.
	providers := []provider.Provider{
		provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:  cfg.Providers.OpenAIAPIKey,
			BaseURL: cfg.Providers.OpenAIBaseURL,
			Model:   cfg.Providers.OpenAIModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
		provider.NewAnthropic(provider.AnthropicConfig{
			APIKey:  cfg.Providers.AnthropicAPIKey,
			BaseURL: cfg.Providers.AnthropicURL,
			Model:   cfg.Providers.AnthropicModel,
			Timeout: cfg.Providers.Timeout,
		}, logger),
	}

	svc := verify.NewService(extractor, providers, verify.Config{
		BatchConcurrency: cfg.Verify.BatchConcurrency,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(svc, logger).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
