package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/appstore/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LevelError},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LoggerConfig{
		Level:         LevelWarn,
		Component:     "test",
		EnableConsole: true,
		Console:       &buf,
	}))
	defer CloseLogger()

	Info("hidden message")
	Warn("visible message", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "component=test")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "agent.log")
	require.NoError(t, InitWithConfig(LoggerConfig{
		Level:      LevelDebug,
		FilePath:   path,
		MaxSizeMB:  1,
		EnableJSON: true,
	}))
	Debug("written to file", "n", 1)
	CloseLogger()

	assert.FileExists(t, path)
}

func currentLevel() slog.Level {
	mu.RLock()
	defer mu.RUnlock()
	return instance.level.Level()
}

func TestInit_VerboseAndDebugRaiseLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		verbose  bool
		debug    bool
		want     slog.Level
	}{
		{"configured level", "ERROR", false, false, slog.LevelError},
		{"verbose raises to info", "ERROR", true, false, slog.LevelInfo},
		{"verbose never lowers", "DEBUG", true, false, slog.LevelDebug},
		{"debug wins", "WARN", true, true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefaultConfig()
			cfg.LogPath = ""
			cfg.LogLevel = tt.logLevel
			cfg.Verbose = tt.verbose
			cfg.Debug = tt.debug

			require.NoError(t, Init(cfg, "test"))
			defer CloseLogger()
			assert.Equal(t, tt.want, currentLevel())
		})
	}
}
