package logger

import (
	"io"
	"os"
	"strings"

	"github.com/samvad-hq/samvad-news-reader/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface components depend on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Init initializes a zap SugaredLogger using settings from config.
func Init(cfg *config.Config) (*zap.SugaredLogger, error) {
	return InitWriter(cfg, os.Stdout)
}

// InitWriter is Init with an explicit sink; hosts that own stdout log to stderr.
func InitWriter(cfg *config.Config, w io.Writer) (*zap.SugaredLogger, error) {
	level := ParseLevel("")
	if cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := logger.Sugar()
	S = sugar
	return sugar, nil
}

// ParseLevel maps a config string onto a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Zap adapts a SugaredLogger to Logger.
type Zap struct {
	L *zap.SugaredLogger
}

// New wraps sugar; a nil sugar yields a NopLogger.
func New(sugar *zap.SugaredLogger) Logger {
	if sugar == nil {
		return NopLogger{}
	}
	return Zap{L: sugar}
}

func (z Zap) InfoObj(msg, key string, obj interface{})  { z.L.Desugar().Info(msg, zap.Any(key, obj)) }
func (z Zap) DebugObj(msg, key string, obj interface{}) { z.L.Desugar().Debug(msg, zap.Any(key, obj)) }
func (z Zap) WarnObj(msg, key string, obj interface{})  { z.L.Desugar().Warn(msg, zap.Any(key, obj)) }
func (z Zap) ErrorObj(msg, key string, obj interface{}) { z.L.Desugar().Error(msg, zap.Any(key, obj)) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Ensure returns log, or a NopLogger when log is nil.
func Ensure(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}

// ErrorObj logs through the package-level logger; it is a no-op before Init.
func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
