package logger

import (
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Log writes structured entries tagged with the service name. Every entry carries the
// context/scope/meta fields and the caller's file and line.
type Log struct {
	AppName string
	Logger  *logrus.Logger
}

var (
	mu     sync.RWMutex
	global = New("servicehub", "info", os.Stdout)
)

// New builds a JSON logger writing to out. Unknown levels fall back to info.
func New(appName, level string, out io.Writer) Log {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(out)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return Log{AppName: appName, Logger: l}
}

// Init replaces the process-wide logger.
func Init(appName, level string) {
	mu.Lock()
	defer mu.Unlock()
	global = New(appName, level, os.Stdout)
}

// Get returns the process-wide logger.
func Get() Log {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func (l Log) entry(context, scope, meta string) *logrus.Entry {
	_, file, line, _ := runtime.Caller(2)
	return l.Logger.WithFields(logrus.Fields{
		"service": l.AppName,
		"context": context,
		"scope":   scope,
		"meta":    meta,
		"file":    file,
		"line":    line,
	})
}

func (l Log) Info(context, message, scope, meta string) {
	l.entry(context, scope, meta).Info(message)
}

func (l Log) Warn(context, message, scope, meta string) {
	l.entry(context, scope, meta).Warn(message)
}

func (l Log) Error(context, message, scope, meta string) {
	l.entry(context, scope, meta).Error(message)
}

// WithFields exposes the underlying logrus entry for ad-hoc fields (e.g. access logs).
func (l Log) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithField("service", l.AppName).WithFields(fields)
}
