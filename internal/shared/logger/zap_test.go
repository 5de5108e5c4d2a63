package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("defaults to info", func(t *testing.T) {
		log, err := NewZapLogger(nil)
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("honors the configured level", func(t *testing.T) {
		log, err := NewZapLogger(&Config{Level: "error", Format: "json"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.WarnLevel))
		assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("accepts text format", func(t *testing.T) {
		_, err := NewZapLogger(&Config{Level: "debug", Format: "text"})
		require.NoError(t, err)
	})
}
