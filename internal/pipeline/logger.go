package pipeline

import (
	"fmt"
	"io"
)

// Logger receives progress messages during evaluation. Implementations must
// be safe for concurrent use; scoring fans out across workers.
type Logger interface {
	Logf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

type writerLogger struct {
	w io.Writer
}

// NewLogger returns a logger that writes one line per message to w.
func NewLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

func (l *writerLogger) Logf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format+"\n", args...)
}
