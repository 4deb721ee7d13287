package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thabo-maseko/regverify/internal/document"
)

// AnthropicConfig holds the Anthropic provider settings.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string        // default https://api.anthropic.com/v1
	Model   string        // default "claude-3-5-haiku-latest"
	Timeout time.Duration // default 45s
}

// Anthropic extracts structured fields via the Messages API.
type Anthropic struct {
	cfg    AnthropicConfig
	client *http.Client
	log    *slog.Logger
}

func NewAnthropic(cfg AnthropicConfig, logger *slog.Logger) *Anthropic {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Anthropic{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Available() bool { return a.cfg.APIKey != "" }

func (a *Anthropic) Extract(ctx context.Context, text string, docType document.Type) (document.ExtractedRegistrationData, error) {
	rid := uuid.New().String()
	start := time.Now()

	system, user := BuildPrompt(docType, text)
	body := map[string]any{
		"model":      a.cfg.Model,
		"max_tokens": 1024,
		"system":     system,
		"messages": []map[string]any{
			{"role": "user", "content": user},
		},
	}

	a.log.Info("provider.anthropic.request",
		"req_id", rid,
		"model", a.cfg.Model,
		"doc_type", docType,
		"text_len", len(text),
	)

	raw, err := a.post(ctx, strings.TrimRight(a.cfg.BaseURL, "/")+"/messages", body)
	if err != nil {
		a.log.Error("provider.anthropic.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return document.ExtractedRegistrationData{}, err
	}

	var msg struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return document.ExtractedRegistrationData{}, fmt.Errorf("decode anthropic response: %w", err)
	}
	var content string
	for _, c := range msg.Content {
		if c.Type == "text" {
			content = strings.TrimSpace(c.Text)
			break
		}
	}
	if content == "" {
		return document.ExtractedRegistrationData{}, fmt.Errorf("no text content in anthropic response")
	}

	data, err := DecodeFields([]byte(content))
	if err != nil {
		a.log.Error("provider.anthropic.decode_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return document.ExtractedRegistrationData{}, err
	}

	a.log.Info("provider.anthropic.ok",
		"req_id", rid,
		"fields", len(data.FieldsExtracted),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

func (a *Anthropic) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			a.log.Warn("anthropic response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("anthropic status %d: %s", resp.StatusCode, truncate(string(raw), 2<<10))
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
