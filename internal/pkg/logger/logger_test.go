package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestCtxAddsTraceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bistro.log")
	closer := Init(Options{Level: "debug", File: FileOptions{Path: path, MaxSizeMB: 1}}, "bistro-test")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	Ctx(ctx).Info().Msg("order placed")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, string(raw), `"span_id":"00f067aa0ba902b7"`)
	assert.Contains(t, string(raw), `"service":"bistro-test"`)
}

func TestCtxWithoutSpanReturnsBase(t *testing.T) {
	Init(Options{Level: "warn"}, "bistro-test")
	assert.Same(t, L(), Ctx(context.Background()))
}
