package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewWithConfig(Config{
		Name:   "test",
		Format: FormatJSON,
		Level:  slog.LevelDebug,
		Writer: buf,
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInfoIncludesPackageAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.Function("TestFunc").Info("hello", "count", 3)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["package"])
	assert.Equal(t, "TestFunc", entry["function"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestErrReturnsOriginalError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	original := errors.New("boom")
	returned := log.Err("operation failed", original)

	assert.Equal(t, original, returned)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
}

func TestErrorWithTypeWrapsSentinel(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	sentinel := errors.New("validation error")
	err := log.ErrorWithType(sentinel, "name is required")

	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "name is required")
}

func TestErrorReturnsMessageError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	err := log.Error("something went wrong", "id", "abc")
	assert.EqualError(t, err, "something went wrong")
}

func TestTraceFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	log.TraceFromContext(ctx).Info("traced")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "trace-123", entry["traceID"])
}

func TestTraceFromContextWithoutTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.TraceFromContext(context.Background()).Info("untraced")

	entry := decodeLine(t, &buf)
	_, present := entry["traceID"]
	assert.False(t, present)
}

func TestTraceIDFromContextMissing(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
}
