package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With(slog.String("component", "test")).Info("with attrs", slog.Int("rows", 3))
	logger.Warn("warn msg")

	assert.Equal(t, 2, handler.Count())
	assert.True(t, handler.ContainsMessage("with attrs"))
	assert.True(t, handler.ContainsAttr("component", "test"))
	assert.True(t, handler.ContainsAttr("rows", int64(3)))
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
	AssertLogContains(t, handler, slog.LevelWarn, "warn")
	AssertNoErrors(t, handler)
}
