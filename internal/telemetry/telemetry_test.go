package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), TelemetryConfig{}, zerolog.Nop())
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "span")
	require.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_Enabled(t *testing.T) {
	p, err := NewProvider(context.Background(), TelemetryConfig{
		Enabled:  true,
		Endpoint: "127.0.0.1:4318",
		Insecure: true,
		Version:  "test",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		// Nothing listens on the endpoint, so a flush can only time out
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_ = p.Shutdown(ctx)
	})

	_, span := p.Tracer().Start(context.Background(), "span")
	require.True(t, span.SpanContext().IsValid())
}
