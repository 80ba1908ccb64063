package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance
var Logger *zap.Logger

// level is shared by every logger built by Setup so flags parsed later can raise it.
var level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

// Setup builds the diagnostic logger. It writes human-readable lines to
// stderr only, keeping stdout free for the document. Warnings are always
// shown; debug enables everything.
func Setup(debug bool) (*zap.Logger, error) {
	var err error
	cfg := zap.NewDevelopmentConfig()

	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	cfg.Level = level
	cfg.Development = false
	cfg.DisableCaller = !debug
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = ""

	Logger, err = cfg.Build()
	if err != nil {
		Logger = zap.NewExample()
		return Logger, err
	}

	zap.ReplaceGlobals(Logger)
	return Logger, nil
}

// SetVerbose lowers the threshold to Info so per-file progress is printed.
// It never raises a level that is already more detailed.
func SetVerbose(verbose bool) {
	if verbose && level.Level() > zapcore.InfoLevel {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// Level reports the current threshold of loggers built by Setup.
func Level() zapcore.Level {
	return level.Level()
}
