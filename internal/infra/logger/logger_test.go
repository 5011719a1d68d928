package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestTraceContextHandler_AddsTraceAndClipContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newStdoutHandler(&buf, slog.LevelInfo))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithStage(ctx, "encode")

	log.InfoContext(ctx, "encoded clip")

	line := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
	assert.Equal(t, "sess-1", line["clip.session.id"])
	assert.Equal(t, "encode", line["clip.stage"])
	assert.NotContains(t, line, "clip.paper.id")
}

func TestTraceContextHandler_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newStdoutHandler(&buf, slog.LevelInfo))

	log.Info("plain")

	line := decodeLine(t, &buf)
	assert.NotContains(t, line, "trace_id")
	assert.Equal(t, "plain", line["msg"])
}

func TestMultiHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMultiHandler(&buf, slog.LevelWarn))

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.With("component", "publisher").Warn("kept")
	line := decodeLine(t, &buf)
	assert.Equal(t, "publisher", line["component"])
}

func TestScrubHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewScrubHandler(newStdoutHandler(&buf, slog.LevelInfo))).With("DSN", "postgres://u:p@db/clip")

	image := "data:image/webp;base64," + strings.Repeat("A", 4096)
	log.Info("clip published",
		"image_url", image,
		"api_key", "k-123",
		slog.Group("request", "authorization", "Bearer t", "page", 3),
		"share_url", "https://news.example/clip/42")

	line := decodeLine(t, &buf)
	assert.Equal(t, "data:image/webp;base64,<4096 bytes>", line["image_url"])
	assert.Equal(t, "[redacted]", line["api_key"])
	assert.Equal(t, "[redacted]", line["DSN"])
	assert.Equal(t, map[string]any{"authorization": "[redacted]", "page": float64(3)}, line["request"])
	assert.Equal(t, "https://news.example/clip/42", line["share_url"])
	assert.NotContains(t, buf.String(), "AAAA")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
