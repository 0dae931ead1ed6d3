package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truthlens/truthlens-api/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func TestInit_WithoutEndpointStillCreatesSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := Init(context.Background(), "truthlens-api", "test", "development", config.TracingConfig{SampleRatio: 1})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
}

func TestInit_ZeroRatioDoesNotSample(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := Init(context.Background(), "truthlens-api", "test", "development", config.TracingConfig{SampleRatio: 0})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.False(t, span.SpanContext().IsSampled())
	assert.Equal(t, trace.FlagsSampled&span.SpanContext().TraceFlags(), trace.TraceFlags(0))
}
