package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "text format at info level",
			config: Config{Level: "info", Format: "text"},
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="check started"`)
			},
		},
		{
			name:   "json format at debug level",
			config: Config{Level: "debug", Format: "json"},
			checkFunc: func(t *testing.T, output string) {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &entry))
				assert.Equal(t, "DEBUG", entry["level"])
				assert.Equal(t, "check started", entry["msg"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.config, &buf)

			if tt.config.Level == "debug" {
				logger.Debug("check started")
			} else {
				logger.Info("check started")
			}

			tt.checkFunc(t, buf.String())
		})
	}
}

func TestNewLoggerUnparseableLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "verbose", Format: "text"}, &buf)

	logger.Debug("too quiet")
	assert.Empty(t, buf.String())

	logger.Info("check started")
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestNewLoggerLevelFiltersLowerRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "warn", Format: "text"}, &buf)

	logger.Info("check started")
	assert.Empty(t, buf.String())

	logger.Warn("queue is filling up")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestNewLoggerResolvesFileOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	logger := NewLogger(Config{Level: "info", Format: "text", Output: "file"}, nil)
	logger.Info("check started")

	data, err := os.ReadFile("pr-warden.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="check started"`)
}
