package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level Level) *DefaultLogger {
	l := NewWriterLogger(buf, level)
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		" warn ":  WarnLevel,
		"warning": WarnLevel,
		"Error":   ErrorLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestDefaultLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, DebugLevel)

	l.Error(errors.New("boom"), "calibration failed", Fields{"samples": 3, "duration_ms": 3000})

	assert.Equal(t, "2024-03-01T12:00:00Z [ERROR] calibration failed: boom duration_ms=3000 samples=3\n", buf.String())
}

func TestDefaultLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "[WARN] shown")
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := fixedLogger(&buf, InfoLevel)
	child := parent.WithFields(Fields{"component": "calibration"})

	child.Info("child")
	parent.Info("parent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "component=calibration")
	assert.NotContains(t, string(lines[1]), "component")
}

func TestContextFields(t *testing.T) {
	ctx := ContextWithFields(context.Background(), Fields{"file": "a.wav"})
	ctx = ContextWithFields(ctx, Fields{"frame": 4})

	fields := FieldsFromContext(ctx)
	assert.Equal(t, Fields{"file": "a.wav", "frame": 4}, fields)
	assert.Nil(t, FieldsFromContext(context.Background()))

	var buf bytes.Buffer
	fixedLogger(&buf, InfoLevel).WithContext(ctx).Info("frame analysed")
	assert.Contains(t, buf.String(), "file=a.wav frame=4")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	SetGlobalLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetGlobalLogger())

	var buf bytes.Buffer
	SetGlobalLogger(fixedLogger(&buf, InfoLevel))
	Info("hello")
	assert.Contains(t, buf.String(), "[INFO] hello")
}
