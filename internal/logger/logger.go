package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the shared application logger. It starts as a no-op so
// library code can log unconditionally; Init swaps in the real logger.
var Log = zap.NewNop()

var built bool

// Init builds the logger once; repeated calls are no-ops.
func Init() {
	if built {
		return
	}
	built = true

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	l, err := cfg.Build()
	if err != nil {
		// Logging must never take the renderer down.
		return
	}
	Log = l
}

// Sync flushes buffered entries. Safe to defer from main.
func Sync() {
	_ = Log.Sync()
}
