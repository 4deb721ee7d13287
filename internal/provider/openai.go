package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/thabo-maseko/regverify/internal/document"
)

// OpenAIConfig holds the OpenAI provider settings.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string        // optional OpenAI-compatible endpoint
	Model   string        // default "gpt-4o-mini"
	Timeout time.Duration // default 45s
}

// OpenAI extracts structured fields via the chat completions API.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
	log    *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) *OpenAI {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		log:    logger,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Available() bool { return o.cfg.APIKey != "" }

func (o *OpenAI) Extract(ctx context.Context, text string, docType document.Type) (document.ExtractedRegistrationData, error) {
	rid := uuid.New().String()
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	system, user := BuildPrompt(docType, text)
	o.log.Info("provider.openai.request",
		"req_id", rid,
		"model", o.cfg.Model,
		"doc_type", docType,
		"text_len", len(text),
	)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		o.log.Error("provider.openai.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return document.ExtractedRegistrationData{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return document.ExtractedRegistrationData{}, fmt.Errorf("no choices in openai response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	data, err := DecodeFields([]byte(content))
	if err != nil {
		o.log.Error("provider.openai.decode_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return document.ExtractedRegistrationData{}, err
	}

	o.log.Info("provider.openai.ok",
		"req_id", rid,
		"fields", len(data.FieldsExtracted),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}
