package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "pdftotext", cfg.OCR.Pdftotext)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "eng", cfg.OCR.TesseractLang)
	assert.Equal(t, 60*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers.OpenAIModel)
	assert.Equal(t, 45*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, 4, cfg.Verify.BatchConcurrency)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OCR_TIMEOUT", "90s")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 8, cfg.Verify.BatchConcurrency)
	assert.Equal(t, "sk-test", cfg.Providers.OpenAIAPIKey)
}

func TestLoadConfigIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("BATCH_CONCURRENCY", "lots")
	t.Setenv("OCR_TIMEOUT", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 4, cfg.Verify.BatchConcurrency)
	assert.Equal(t, 60*time.Second, cfg.OCR.Timeout)
}

func TestValidateRejectsBadConcurrency(t *testing.T) {
	cfg := LoadConfig()
	cfg.Verify.BatchConcurrency = 0

	err := cfg.Validate()

	require.Error(t, err)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}
