// Package logging adapts logrus to the small printf style Logger interface
// accepted by every package of this module.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields
type Fields = logrus.Fields

// Logger is satisfied by the package level Logger interfaces of security,
// oauth2, communication, file and gfx.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Logrus wraps a logrus entry.
type Logrus struct {
	entry *logrus.Entry
}

// NewLogrus adapts l. A nil logger uses a fresh logrus.New().
func NewLogrus(l *logrus.Logger) *Logrus {
	if l == nil {
		l = logrus.New()
	}
	return &Logrus{entry: logrus.NewEntry(l)}
}

// New creates a logrus backed logger with the given level and format.
// Format "json" selects the JSON formatter, anything else the text one.
func New(level, format string, out io.Writer) (*Logrus, error) {
	l := logrus.New()
	if out != nil {
		l.SetOutput(out)
	}

	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		l.SetLevel(lvl)
	}

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return NewLogrus(l), nil
}

// Debug logs at debug level.
func (l *Logrus) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

// Info logs at info level.
func (l *Logrus) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

// Warn logs at warn level.
func (l *Logrus) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

// Error logs at error level.
func (l *Logrus) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

// WithField returns a logger carrying key.
func (l *Logrus) WithField(key string, value any) *Logrus {
	return &Logrus{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger carrying fields.
func (l *Logrus) WithFields(fields Fields) *Logrus {
	return &Logrus{entry: l.entry.WithFields(fields)}
}

// Named tags every entry with the module name, e.g. "oauth2".
func (l *Logrus) Named(module string) *Logrus {
	return l.WithField("module", module)
}
