package sys

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotLogHandlerKeepsAttrs(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	logger := slog.New(newTestHandler(&buf)).With(slog.String("component", "guard"))

	logger.Warn("timed out member", "subject", "42", "kind", "spam")

	out := buf.String()
	assert.Contains(out, "[WARN]")
	assert.Contains(out, "[GUARD] timed out member")
	assert.Contains(out, "subject=42")
	assert.Contains(out, "kind=spam")
	assert.NotContains(out, "\x1b[")
}

func TestBotLogHandlerSilent(t *testing.T) {
	var buf bytes.Buffer
	h := NewBotLogHandler(&buf, &BotLogHandlerOptions{Silent: true, Level: slog.LevelInfo})
	slog.New(h).Error("nobody hears this")
	assert.Empty(t, buf.String())
}

func newTestHandler(buf *bytes.Buffer) slog.Handler {
	return NewBotLogHandler(NewStripANSIWriter(buf), &BotLogHandlerOptions{Level: slog.LevelDebug})
}
