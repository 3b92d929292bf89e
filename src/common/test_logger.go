package common

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// TestLogLevel is the level used by loggers created in tests.
const TestLogLevel = logrus.InfoLevel

// testWriter routes log lines to t.Log so they only show for failed or
// verbose tests.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(d []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(d), "\n"))
	return len(d), nil
}

// NewTestLogger returns a logrus Logger that writes to t.Log.
func NewTestLogger(t testing.TB, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.Out = testWriter{t: t}
	logger.Level = level
	logger.Formatter = &prefixed.TextFormatter{DisableColors: true}
	return logger
}

// NewTestEntry returns a logrus Entry, with the given prefix, writing to t.Log.
func NewTestEntry(t testing.TB, level logrus.Level, prefix string) *logrus.Entry {
	return NewTestLogger(t, level).WithField("prefix", prefix)
}
