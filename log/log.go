// Package log writes diagnostics to stderr. Stdout belongs to the plugin
// status line, so nothing in here ever touches it.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var IsVerbose bool

var logger = newLogger(zapcore.AddSync(os.Stderr), false)

// Init rebuilds the logger; verbose enables Verbose output.
func Init(verbose bool) {
	IsVerbose = verbose
	logger = newLogger(zapcore.AddSync(os.Stderr), verbose)
}

// SetLogger replaces the underlying logger.
func SetLogger(l *zap.Logger) {
	logger = l.Sugar()
}

func newLogger(w zapcore.WriteSyncer, verbose bool) *zap.SugaredLogger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), w, zap.NewAtomicLevelAt(level))
	return zap.New(core).Sugar()
}

func Info(s string, args ...any) {
	if len(args) > 0 {
		logger.Infof(s, args...)
	} else {
		logger.Info(s)
	}
}

func Error(s string, args ...any) {
	if len(args) > 0 {
		logger.Errorf(s, args...)
	} else {
		logger.Error(s)
	}
}

func Verbose(s string, args ...any) {
	if !IsVerbose {
		return
	}
	if len(args) > 0 {
		logger.Debugf(s, args...)
	} else {
		logger.Debug(s)
	}
}

// With returns a logger carrying the given key/value pairs.
func With(keysAndValues ...any) *zap.SugaredLogger {
	return logger.With(keysAndValues...)
}

func Sync() {
	_ = logger.Sync()
}
