package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// syncBuffer adapts strings.Builder to zapcore.WriteSyncer.
type syncBuffer struct {
	strings.Builder
}

func (b *syncBuffer) Sync() error { return nil }

func TestGetLoggerBeforeInitializeReturnsFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
}

func TestInitializeWritesToConsoleCore(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "siteforge-test",
	}, zapcore.Lock(&buf))

	GetLogger().Info("component extraction finished")

	out := buf.String()
	assert.Contains(t, out, "component extraction finished")
	assert.Contains(t, out, "siteforge-test")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second syncBuffer
	Initialize(LoggerConfig{Level: "info", Format: "json", ServiceName: "one"}, zapcore.Lock(&first))
	Initialize(LoggerConfig{Level: "info", Format: "json", ServiceName: "two"}, zapcore.Lock(&second))

	GetLogger().Info("message after double init")

	assert.Contains(t, first.String(), "message after double init")
	assert.Empty(t, second.String(), "second initialization must be a no-op")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf syncBuffer
	Initialize(LoggerConfig{Level: "chatty", Format: "json", ServiceName: "t"}, zapcore.Lock(&buf))

	GetLogger().Debug("too quiet")
	GetLogger().Info("loud enough")

	assert.NotContains(t, buf.String(), "too quiet")
	assert.Contains(t, buf.String(), "loud enough")
}
