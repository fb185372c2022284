package gotds

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sq1dr/gotds/msdsn"
)

// ContextLogger is the diagnostics sink the packet framer and Connection are
// constructed with; the framer logs each packet it reads and each final
// packet it flushes. It takes a context so a future
// transport can thread trace IDs through without changing the signature.
type ContextLogger interface {
	Log(ctx context.Context, level msdsn.Log, msg string)
}

// nopLogger discards everything; it is the zero value used when a caller
// does not configure a logger.
type nopLogger struct{}

func (nopLogger) Log(context.Context, msdsn.Log, string) {}

// ordered most to least severe; the first matching bit wins.
var msdsnLevelPrecedence = []struct {
	bit   msdsn.Log
	level zapcore.Level
}{
	{msdsn.LogErrors, zapcore.ErrorLevel},
	{msdsn.LogMessages, zapcore.InfoLevel},
	{msdsn.LogSQL, zapcore.InfoLevel},
	{msdsn.LogDebug, zapcore.DebugLevel},
	{msdsn.LogPackets, zapcore.DebugLevel},
}

// zapContextLogger implements ContextLogger by wrapping a zap.Logger.
type zapContextLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a *zap.Logger as a ContextLogger.
func NewZapLogger(logger *zap.Logger) ContextLogger {
	return &zapContextLogger{logger: logger}
}

func (l *zapContextLogger) Log(_ context.Context, level msdsn.Log, data string) {
	zapLevel := zapcore.InfoLevel
	for _, p := range msdsnLevelPrecedence {
		if level&p.bit != 0 {
			zapLevel = p.level
			break
		}
	}
	l.logger.Log(zapLevel, data)
}
