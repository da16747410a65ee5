// Package logger 提供基于 zap 的日志记录器。
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lk2023060901/lowband/pkg/config"
)

// Logger 日志接口
// 其他 pkg 模块引用此接口，避免直接依赖 zap
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// Named 派生带名称的子 logger
	Named(name string) Logger
	// WithFields 派生带固定字段的子 logger
	WithFields(keysAndValues ...interface{}) Logger

	Sync() error
}

// 确保 zapLogger 实现了 Logger 接口
var _ Logger = (*zapLogger)(nil)

// zapLogger 基于 zap 的日志记录器实现
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New 创建日志记录器
func New(cfg *Config) (Logger, error) {
	mergedCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge logger config: %w", err)
	}
	if err := mergedCfg.Validate(); err != nil {
		return nil, err
	}

	core, err := buildCore(mergedCfg)
	if err != nil {
		return nil, err
	}

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &zapLogger{sugar: zl.Sugar()}, nil
}

// buildCore 构建 zap core
func buildCore(cfg *Config) (zapcore.Core, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case ConsoleFormat:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writers := make([]zapcore.WriteSyncer, 0, 2)
	if cfg.EnableConsole {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}
	if cfg.EnableFile {
		w, err := newRotationWriter(&cfg.Rotation, cfg.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create rotation writer: %w", err)
		}
		writers = append(writers, zapcore.AddSync(w))
	}
	if len(writers) == 0 {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}

	return zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(writers...),
		parseLevel(cfg.Level),
	), nil
}

// parseLevel 转换日志等级
func parseLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug 记录 debug 日志
func (l *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info 记录 info 日志
func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn 记录 warn 日志
func (l *zapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error 记录 error 日志
func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Named 派生带名称的子 logger
func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{sugar: l.sugar.Named(name)}
}

// WithFields 派生带固定字段的子 logger
func (l *zapLogger) WithFields(keysAndValues ...interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// Sync 刷新缓冲
func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}
