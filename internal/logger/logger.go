package logger

import "go.uber.org/zap"

// Logger is the logging surface the server packages depend on. The concrete
// implementation is zap; tests pass Nop().
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds the production logger. dev switches to the human-readable
// development encoder.
func New(dev bool) (Logger, error) {
	var l *zap.Logger
	var err error
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Info(args ...interface{})                  { l.s.Info(args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.s.Infof(format, args...) }
func (l *zapLogger) Warn(args ...interface{})                  { l.s.Warn(args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.s.Warnf(format, args...) }
func (l *zapLogger) Error(args ...interface{})                 { l.s.Error(args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }
func (l *zapLogger) Debug(args ...interface{})                 { l.s.Debug(args...) }
func (l *zapLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }
func (l *zapLogger) Fatalf(format string, args ...interface{}) { l.s.Fatalf(format, args...) }
