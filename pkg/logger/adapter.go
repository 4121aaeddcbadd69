package logger

import (
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
)

// WhatsmeowLogger adapts a zap logger to the whatsmeow logging interface
type WhatsmeowLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	module string
}

var _ waLog.Logger = (*WhatsmeowLogger)(nil)

// NewWhatsmeowLogger creates an adapter logging under module
func NewWhatsmeowLogger(logger *zap.Logger, module string) *WhatsmeowLogger {
	base := logger.WithOptions(zap.AddCallerSkip(1))
	return &WhatsmeowLogger{
		base:   base,
		sugar:  base.Sugar().With("module", module),
		module: module,
	}
}

func (l *WhatsmeowLogger) Debugf(msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

func (l *WhatsmeowLogger) Infof(msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

func (l *WhatsmeowLogger) Warnf(msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

func (l *WhatsmeowLogger) Errorf(msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}

// Sub returns a logger for a nested module, e.g. "Client/Socket"
func (l *WhatsmeowLogger) Sub(module string) waLog.Logger {
	name := l.module + "/" + module
	return &WhatsmeowLogger{
		base:   l.base,
		sugar:  l.base.Sugar().With("module", name),
		module: name,
	}
}
