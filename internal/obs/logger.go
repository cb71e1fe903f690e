package obs

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level  string
	Pretty bool
	App    string
	Env    string
	Ver    string
	// File receives every line at Level. When set, stderr only gets errors
	// so that a debug run keeps the terminal clean.
	File string
}

func NewLogger(c LogConfig) (*zap.Logger, error) {
	var cfg zap.Config
	if c.Pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	level := zapcore.InfoLevel
	if err := level.Set(c.Level); err != nil {
		level = zapcore.InfoLevel
	}
	console := level
	if c.File != "" && console < zapcore.ErrorLevel {
		console = zapcore.ErrorLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(console)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	fields := []zap.Field{
		zap.String("service", c.App),
		zap.String("env", c.Env),
		zap.String("version", c.Ver),
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if c.File == "" {
		return l.With(fields...), nil
	}

	sink, _, err := zap.Open(c.File)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", c.File, err)
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), sink, zap.NewAtomicLevelAt(level))
	l = l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
	return l.With(fields...), nil
}
