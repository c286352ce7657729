package tracer

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_Disabled(t *testing.T) {
	tp, err := InitTracer(context.Background(), Config{
		ServiceName: "catalog-service",
		Environment: "test",
		Enabled:     false,
	}, logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	assert.Equal(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracer_EnabledWithoutEndpointStaysLocal(t *testing.T) {
	tp, err := InitTracer(context.Background(), Config{
		ServiceName: "catalog-service",
		Enabled:     true,
		SampleRatio: 1,
	}, logger.NewNop())
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
