// Package logx wraps logrus with the component-tagged, key/value structured
// logging style used throughout the teacher codebase's pkg/logx.
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin, structured wrapper around a logrus.Entry.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger tagged with component, at the given level
// (debug|info|warn|error|trace; unrecognized levels fall back to info).
func NewLogger(level, component string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &Logger{entry: l.WithField("component", component)}
}

// With returns a child logger with additional fields attached, useful for
// tagging a detector ID or frequency bucket for the lifetime of a call.
func (lg *Logger) With(kv ...interface{}) *Logger {
	return &Logger{entry: lg.entry.WithFields(toFields(kv))}
}

func (lg *Logger) Debug(msg string, kv ...interface{}) {
	lg.entry.WithFields(toFields(kv)).Debug(msg)
}

func (lg *Logger) Info(msg string, kv ...interface{}) {
	lg.entry.WithFields(toFields(kv)).Info(msg)
}

func (lg *Logger) Warn(msg string, kv ...interface{}) {
	lg.entry.WithFields(toFields(kv)).Warn(msg)
}

func (lg *Logger) Error(msg string, kv ...interface{}) {
	lg.entry.WithFields(toFields(kv)).Error(msg)
}

func (lg *Logger) Trace(msg string, kv ...interface{}) {
	lg.entry.WithFields(toFields(kv)).Trace(msg)
}

func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}
