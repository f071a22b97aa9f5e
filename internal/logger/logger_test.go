package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCapturedOutput(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer

	mu.Lock()
	prevOutput := output
	output = &buf
	mu.Unlock()

	t.Cleanup(func() {
		mu.Lock()
		output = prevOutput
		mu.Unlock()
		reconfigure("text")
	})

	reconfigure(format)
	return &buf
}

func TestSetLevel_SuppressesBelowThreshold(t *testing.T) {
	buf := withCapturedOutput(t, "text")

	SetLevel("WARN")
	Info("should not appear")
	assert.Empty(t, buf.String())

	Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestSetLevel_UnknownLevelIsNoop(t *testing.T) {
	_ = withCapturedOutput(t, "text")

	SetLevel("DEBUG")
	require.Equal(t, slog.LevelDebug, levelVar.Level())

	SetLevel("not-a-real-level")
	assert.Equal(t, slog.LevelDebug, levelVar.Level(), "an unrecognized level must not change the current one")
}

func TestInit_JSONFormat(t *testing.T) {
	buf := withCapturedOutput(t, "text")

	Init(Config{Level: "INFO", Format: "json"})
	Info("hello", "key", "value")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "json handler must emit a JSON object")
	assert.Contains(t, line, `"msg":"hello"`)
}
