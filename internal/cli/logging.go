package cli

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// newLogger writes human-readable logs to w (stderr for CLI commands, keeping stdout clean
// for JSON output).
func newLogger(w io.Writer, level string) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), parseLevel(level))
	return zap.New(core)
}

// newFileLogger appends JSON logs to <dir>/toolbar.log.
func newFileLogger(dir, level string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{filepath.Join(dir, "toolbar.log")}
	cfg.ErrorOutputPaths = []string{filepath.Join(dir, "toolbar.log")}
	cfg.Sampling = nil
	log, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}
