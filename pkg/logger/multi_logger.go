package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryCommand LogCategory = "command" // Command events (JSON)
	CategoryError   LogCategory = "error"   // Application errors (JSON)
)

// MultiLogger provides categorized logging with separate rotated files
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	writers []*lumberjack.Logger
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level      string // debug, info, warn, error
	LogsDir    string // Directory for log files
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		config:  config,
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	ml.loggers[CategoryCommand] = ml.createStructuredLogger(CategoryCommand, level)
	// Errors are always recorded regardless of level
	ml.loggers[CategoryError] = ml.createStructuredLogger(CategoryError, zapcore.ErrorLevel)

	return ml, nil
}

// createStructuredLogger creates a JSON-formatted logger for a category
func (ml *MultiLogger) createStructuredLogger(category LogCategory, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = ""

	encoder := zapcore.NewJSONEncoder(encoderConfig)

	rotator := &lumberjack.Logger{
		Filename:   ml.GetCategoryLogPath(category),
		MaxSize:    ml.config.MaxSizeMB,
		MaxBackups: ml.config.MaxBackups,
		MaxAge:     ml.config.MaxAgeDays,
		Compress:   true,
	}
	ml.writers = append(ml.writers, rotator)

	core := zapcore.NewCore(encoder, zapcore.AddSync(rotator), level)
	return zap.New(core)
}

// GetCategoryLogPath returns the log file path for a category
func (ml *MultiLogger) GetCategoryLogPath(category LogCategory) string {
	return filepath.Join(ml.config.LogsDir, fmt.Sprintf("%s.log", category))
}

// GetLogger returns the structured logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}

	return ml.loggers[CategoryError]
}

// LogCommandEvent logs a command lifecycle event with structured data
func (ml *MultiLogger) LogCommandEvent(event string, fields ...zap.Field) {
	if ml == nil {
		return
	}
	ml.GetLogger(CategoryCommand).Info(event, fields...)
}

// LogAppError logs an application-level error (Go errors, panics)
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	if ml == nil {
		return
	}
	ml.GetLogger(CategoryError).Error(msg, fields...)
}

// Close flushes all loggers and closes their files
func (ml *MultiLogger) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	for _, w := range ml.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
