// Package logger holds callgen's process-wide structured logger.
//
// Until Initialize runs every helper is a no-op, so packages can log
// unconditionally and library users of callgen see nothing.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global sugared logger.
	Logger = zap.NewNop().Sugar()
	// JSONOutput records whether Initialize chose JSON lines.
	JSONOutput bool

	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	verbosity int
)

// Initialize installs the global logger, writing to stderr as JSON lines
// or in the console format.
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput
	Logger = New(os.Stderr, jsonOutput).Sugar()
	return nil
}

// New builds a logger on w that follows the global level.
func New(w io.Writer, jsonOutput bool) *zap.Logger {
	var enc zapcore.Encoder
	if jsonOutput {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = newConsoleEncoder()
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// SetVerbosity applies a -v count to the global level.
func SetVerbosity(v int) {
	verbosity = v
	level.SetLevel(VerbosityToLevel(v))
}

// Tracing reports whether -vvv was given.
func Tracing() bool { return ShouldTrace(verbosity) }

// newConsoleEncoder writes "15:04:05 INFO name message k=v" lines.
func newConsoleEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		NameKey:          "N",
		MessageKey:       "M",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// Cleanup flushes buffered entries.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

func Infof(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Infof(format, args...)
	}
}

func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
