package extract

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThreadsLoggerIntoRunner(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(Config{}, logger)

	r, ok := e.runner.(execRunner)
	require.True(t, ok)
	assert.Same(t, logger, r.logger)
}

func TestExecRunnerMissingTool(t *testing.T) {
	r := execRunner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	_, _, err := r.Run(context.Background(), "no-such-converter-binary")
	require.Error(t, err)
}

func TestTruncateCapsLongOutput(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 8))
	assert.Equal(t, "abcde...(truncated)", truncate("abcdefgh", 5))
}
