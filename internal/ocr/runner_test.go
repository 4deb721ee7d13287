package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	var logs bytes.Buffer
	r := execRunner{log: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	out, _, err := r.Run(context.Background(), "echo", "-n", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
	assert.Contains(t, logs.String(), "ocr.exec.ok")
}

func TestExecRunnerMissingBinary(t *testing.T) {
	var logs bytes.Buffer
	r := execRunner{log: slog.New(slog.NewTextHandler(&logs, nil))}

	_, _, err := r.Run(context.Background(), "no-such-engine-binary")

	require.Error(t, err)
	assert.Contains(t, logs.String(), "ocr.exec.failed")
	assert.Contains(t, logs.String(), "no-such-engine-binary")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 8))
	assert.Equal(t, "abcde...(truncated)", truncate("abcdefgh", 5))
}
