// pkg/logging/logging.go - leveled, structured logging for the catalog server and install agent.
//
// Callers use the package-level Info/Debug/Warn/Error functions with alternating
// key/value pairs. Output goes to the console and, when a log path is configured,
// to a size-rotated file.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/windowsadmins/appstore/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps the config spelling (ERROR, WARN, INFO, DEBUG) to a LogLevel.
// Unknown values fall back to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (ll LogLevel) slogLevel() slog.Level {
	switch ll {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level         LogLevel
	Component     string // added to every record as "component"
	FilePath      string // empty disables file output
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	EnableJSON    bool // JSON records instead of key=value text
	EnableConsole bool
	Console       io.Writer // defaults to os.Stderr
}

// Logger wraps the slog logger together with the rotating file it writes to.
type Logger struct {
	logger *slog.Logger
	level  *slog.LevelVar
	file   *lumberjack.Logger
}

var (
	mu       sync.RWMutex
	instance = newConsoleLogger()
)

func newConsoleLogger() *Logger {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	return &Logger{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})),
		level:  lv,
	}
}

// Init initializes the package logger from the application configuration.
// It may be called again after the configuration changes.
func Init(cfg *config.Configuration, component string) error {
	logCfg := LoggerConfig{
		Level:         ParseLevel(cfg.LogLevel),
		Component:     component,
		MaxSizeMB:     cfg.LogMaxSizeMB,
		MaxBackups:    cfg.LogMaxBackups,
		MaxAgeDays:    cfg.LogMaxAgeDays,
		EnableJSON:    cfg.LogJSON,
		EnableConsole: true,
	}
	if cfg.LogPath != "" {
		logCfg.FilePath = filepath.Join(cfg.LogPath, component+".log")
	}
	if cfg.Verbose && logCfg.Level < LevelInfo {
		logCfg.Level = LevelInfo
	}
	if cfg.Debug {
		logCfg.Level = LevelDebug
	}
	return InitWithConfig(logCfg)
}

// InitWithConfig initializes the package logger with an explicit LoggerConfig.
func InitWithConfig(logCfg LoggerConfig) error {
	l, err := newLogger(logCfg)
	if err != nil {
		return err
	}
	mu.Lock()
	old := instance
	instance = l
	mu.Unlock()
	old.close()
	return nil
}

func newLogger(cfg LoggerConfig) (*Logger, error) {
	var writers []io.Writer
	if cfg.EnableConsole {
		console := cfg.Console
		if console == nil {
			console = os.Stderr
		}
		writers = append(writers, console)
	}

	var file *lumberjack.Logger
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	lv := new(slog.LevelVar)
	lv.Set(cfg.Level.slogLevel())
	opts := &slog.HandlerOptions{Level: lv}
	out := io.MultiWriter(writers...)

	var handler slog.Handler
	if cfg.EnableJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return &Logger{logger: logger, level: lv, file: file}, nil
}

func (l *Logger) close() {
	if l != nil && l.file != nil {
		_ = l.file.Close()
	}
}

// CloseLogger flushes and closes the log file, if any. Console logging keeps working.
func CloseLogger() {
	mu.Lock()
	old := instance
	instance = newConsoleLogger()
	mu.Unlock()
	old.close()
}

func logMessage(level LogLevel, message string, keyValues ...interface{}) {
	mu.RLock()
	l := instance.logger
	mu.RUnlock()
	l.Log(context.Background(), level.slogLevel(), message, keyValues...)
}

// Info logs informational messages.
func Info(message string, keyValues ...interface{}) {
	logMessage(LevelInfo, message, keyValues...)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	logMessage(LevelDebug, message, keyValues...)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	logMessage(LevelWarn, message, keyValues...)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	logMessage(LevelError, message, keyValues...)
}
