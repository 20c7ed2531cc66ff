package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_ValidLevels(t *testing.T) {
	levels := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}

	for name, want := range levels {
		t.Run(name, func(t *testing.T) {
			l, err := New(name)
			require.NoError(t, err)
			require.NotNil(t, l)

			assert.True(t, l.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(want-1))
			}
			assert.NotPanics(t, func() {
				l.Info("test log")
			})
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("not-a-level")
	assert.Error(t, err)
}
