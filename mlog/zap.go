package mlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger 把 mlog 的级别映射到 zap: trace->debug, notice->info
type zapLogger struct {
	s *zap.SugaredLogger
}

// UseZapLogger 使用zap作为后端
func UseZapLogger(z *zap.Logger) {
	SetLogger(&zapLogger{s: z.WithOptions(zap.AddCallerSkip(1)).Sugar()})
}

// NewZap 按mlog级别构建一个输出到stderr的zap logger
func NewZap(level Level, development bool) (*zap.Logger, error) {
	var conf zap.Config
	if development {
		conf = zap.NewDevelopmentConfig()
	} else {
		conf = zap.NewProductionConfig()
	}
	conf.Level = zap.NewAtomicLevelAt(zapLevel(level))
	return conf.Build()
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case FatalLevel:
		return zapcore.FatalLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case NoticeLevel, InfoLevel:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func (l *zapLogger) Trace(v ...any) { l.s.Debug(v...) }
func (l *zapLogger) Tracef(format string, v ...any) { l.s.Debugf(format, v...) }
func (l *zapLogger) Debug(v ...any) { l.s.Debug(v...) }
func (l *zapLogger) Debugf(format string, v ...any) { l.s.Debugf(format, v...) }
func (l *zapLogger) Info(v ...any) { l.s.Info(v...) }
func (l *zapLogger) Infof(format string, v ...any) { l.s.Infof(format, v...) }
func (l *zapLogger) Notice(v ...any) { l.s.Info(v...) }
func (l *zapLogger) Noticef(format string, v ...any) { l.s.Infof(format, v...) }
func (l *zapLogger) Warn(v ...any) { l.s.Warn(v...) }
func (l *zapLogger) Warnf(format string, v ...any) { l.s.Warnf(format, v...) }
func (l *zapLogger) Error(v ...any) { l.s.Error(v...) }
func (l *zapLogger) Errorf(format string, v ...any) { l.s.Errorf(format, v...) }
func (l *zapLogger) Fatal(v ...any) { l.s.Fatal(v...) }
func (l *zapLogger) Fatalf(format string, v ...any) { l.s.Fatalf(format, v...) }
