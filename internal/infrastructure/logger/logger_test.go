package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run("should parse "+tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.in))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Run("should target stdout console at info level", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})
}

func TestNew(t *testing.T) {
	t.Run("should write JSON entries to a file sink", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		log, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("engine started", zap.String("component", "test"))
		require.NoError(t, log.Sync())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "engine started", entry["msg"])
		assert.Equal(t, "test", entry["component"])
		assert.Contains(t, entry, "time")
		assert.Contains(t, entry, "caller")
	})

	t.Run("should suppress entries below the configured level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		log, err := New(&Config{Level: "error", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("ignored")
		log.Warn("ignored too")
		require.NoError(t, log.Sync())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, raw)
	})

	t.Run("should attach a stacktrace at error level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Error("boom")
		require.NoError(t, log.Sync())

		var entry map[string]any
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Contains(t, entry, "stacktrace")
	})

	t.Run("should not fail on an unopenable file path", func(t *testing.T) {
		log, err := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "no", "such", "dir", "app.log")})
		require.NoError(t, err)
		log.Info("goes to the stdout fallback")
	})
}

func TestSinkFor(t *testing.T) {
	t.Run("should default empty output to stdout", func(t *testing.T) {
		assert.NotNil(t, sinkFor(""))
	})

	t.Run("should accept stderr", func(t *testing.T) {
		assert.NotNil(t, sinkFor("stderr"))
	})
}
