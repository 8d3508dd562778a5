package logging

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// DefaultLogger writes single-line records of the form
//
//	2006-01-02T15:04:05Z07:00 [LEVEL] message: err key=value ...
//
// Debug/Info go to out, Warn/Error to errOut. Keys are sorted so output is
// stable. Colors are applied only when errOut is a terminal.
type DefaultLogger struct {
	mu        *sync.Mutex
	out       io.Writer
	errOut    io.Writer
	level     Level
	fields    Fields
	useColors bool
	now       func() time.Time
}

// NewDefaultLogger creates a logger on stdout/stderr with colors when
// stderr is a terminal
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		mu:        &sync.Mutex{},
		out:       os.Stdout,
		errOut:    os.Stderr,
		level:     InfoLevel,
		fields:    make(Fields),
		useColors: isTerminal(os.Stderr),
		now:       time.Now,
	}
}

// NewWriterLogger creates an uncolored logger writing every level to w
func NewWriterLogger(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		mu:     &sync.Mutex{},
		out:    w,
		errOut: w,
		level:  level,
		fields: make(Fields),
		now:    time.Now,
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	allFields := make(Fields, len(d.fields))
	maps.Copy(allFields, d.fields)
	for _, f := range fields {
		maps.Copy(allFields, f)
	}

	var b strings.Builder
	b.WriteString(d.now().Format(time.RFC3339))
	fmt.Fprintf(&b, " [%s] %s", level, msg)

	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}

	for _, key := range slices.Sorted(maps.Keys(allFields)) {
		fmt.Fprintf(&b, " %s=%v", key, allFields[key])
	}

	logMsg := b.String()
	if d.useColors {
		switch level {
		case DebugLevel:
			logMsg = ColorGray + logMsg + ColorReset
		case WarnLevel:
			logMsg = ColorYellow + logMsg + ColorReset
		case ErrorLevel:
			logMsg = ColorBold + ColorRed + logMsg + ColorReset
		}
	}

	return logMsg
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < d.level {
		return
	}

	line := d.formatMessage(level, err, msg, fields...) + "\n"

	d.mu.Lock()
	defer d.mu.Unlock()

	switch level {
	case DebugLevel, InfoLevel:
		_, _ = io.WriteString(d.out, line)
	default:
		_, _ = io.WriteString(d.errOut, line)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	clone := *d
	clone.fields = newFields
	return &clone
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields := FieldsFromContext(ctx); len(fields) > 0 {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel is not safe to call concurrently with logging
func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// SetColors overrides terminal detection
func (d *DefaultLogger) SetColors(enabled bool) {
	d.useColors = enabled
}

// NoOpLogger discards everything. Installed by SetGlobalLogger(nil).
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
