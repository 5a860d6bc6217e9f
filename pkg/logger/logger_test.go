package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))

	return entry
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Level("debug"))
	assert.Equal(t, slog.LevelWarn, Level("WARN"))
	assert.Equal(t, slog.LevelError, Level(" error "))
	assert.Equal(t, slog.LevelInfo, Level(""))
	assert.Equal(t, slog.LevelInfo, Level("verbose"))
}

func TestHandler_AddsContextIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-1")

	log.With("component", "test").InfoContext(ctx, "hello", "order_id", "42")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "42", entry["order_id"])
}

func TestHandler_WithoutContextIDs(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, &slog.HandlerOptions{})).Info("plain")

	entry := lastEntry(t, &buf)
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "trace_id")
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, &slog.HandlerOptions{}))

	h := NewLoggerMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	entry := lastEntry(t, &buf)
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/orders", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, len("short and stout"), entry["bytes"])
}
