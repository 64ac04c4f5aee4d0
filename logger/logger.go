// Package logger holds the process-wide zap logger and the field names
// cruxgen logs with.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger discards everything until Initialize runs.
var Logger = zap.NewNop().Sugar()

// Initialize replaces Logger. Output always goes to stderr because stdout may
// carry a registry.
func Initialize(jsonOutput bool, verbosity int) error {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.DisableStacktrace = true
		l, err := cfg.Build()
		if err != nil {
			return err
		}
		Logger = l.Sugar()
		return nil
	}

	Logger = zap.New(zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level)).Sugar()
	return nil
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// VerbosityToLevel maps the -v count to a level. No flag shows warnings, -v
// adds progress and timing, -vv adds relation sizes and dropped members.
func VerbosityToLevel(verbosity int) zapcore.Level {
	if verbosity <= 0 {
		return zapcore.WarnLevel
	}
	return max(zapcore.WarnLevel-zapcore.Level(verbosity), zapcore.DebugLevel)
}

// Cleanup flushes buffered entries.
func Cleanup() {
	_ = Logger.Sync()
}
