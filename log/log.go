package log

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 未调用 Setup 时使用 Nop, 库代码可以直接打日志
var logger = zap.NewNop()

func Logger() *zap.Logger {
	return logger
}

func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// SetDefaultLogger 同时替换 zap 的全局 logger
func SetDefaultLogger(l *zap.Logger) {
	SetLogger(l)
	zap.ReplaceGlobals(logger)
}

// New 按级别名称创建 logger, 级别为空时使用 info
func New(level string, development bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errors.Wrapf(err, "invalid log level '%s': %s", level, err.Error())
		}
	}
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return l, nil
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return fmt.Sprintf("%+v", v)
	default:
		return cast.ToString(val)
	}
}

func CastToError(reason any) (msg string, err error) {
	var ok bool

	err, ok = reason.(error)
	if !ok {
		err = errors.NewAndSkip(toString(reason), 2)
	}
	if err == nil {
		err = errors.NewAndSkip("Unknown Error", 2)
	} else {
		err = errors.WithStackAndSkip(err, 2)
	}

	if logger.Core().Enabled(zap.DebugLevel) {
		msg = fmt.Sprintf("%+v", err)
	} else {
		//goland:noinspection GoDfaNilDereference
		msg = err.Error()
	}

	return
}

func Error(reason any, field ...zap.Field) {
	msg, err := CastToError(reason)

	logger.Error(msg, append(field, zap.Error(err))...)
}

func Warn(reason any, field ...zap.Field) {
	msg, err := CastToError(reason)

	logger.Warn(msg, append(field, zap.Error(err))...)
}

func Info(msg string, field ...zap.Field) {
	logger.Info(msg, field...)
}

func Debug(msg string, field ...zap.Field) {
	logger.Debug(msg, field...)
}
