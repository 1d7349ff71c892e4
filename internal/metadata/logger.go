package metadata

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the console logger used for verbose notices. Info and
// above go to stderr without caller or stack annotations. When verbose is
// false every notice is dropped.
func NewLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.TimeKey = zapcore.OmitKey

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ec),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(zapcore.InfoLevel),
	)
	return zap.New(core)
}
