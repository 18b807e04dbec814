package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dustline/arena/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NotNil(t, p.Meter())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutSinks(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "arena-client"})
	assert.ErrorContains(t, err, "no log writer or endpoint")
}

func TestNew_FileExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(FromConfig(config.OTelConfig{
		Enabled:      true,
		ServiceName:  "arena-client",
		BatchTimeout: time.Second,
	}, "0.0.1", "Operator", &buf))
	require.NoError(t, err)
	require.True(t, p.Enabled())
	require.NotNil(t, p.LoggerProvider())

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := FromConfig(config.OTelConfig{
		Enabled:      true,
		ServiceName:  "svc",
		BatchTimeout: 5 * time.Second,
		Endpoint:     "collector:4318",
		Insecure:     true,
	}, "1.2.3", "Nova", &buf)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "svc", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "Nova", cfg.Player)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "collector:4318", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Same(t, &buf, cfg.LogWriter)
}

func TestResourceAttrs(t *testing.T) {
	attrs := resourceAttrs(Config{ServiceName: "arena-client"})
	require.Len(t, attrs, 1)
	assert.Equal(t, "arena-client", attrs[0].Value.AsString())

	attrs = resourceAttrs(Config{ServiceName: "arena-client", ServiceVersion: "0.0.1", Player: "Kite"})
	require.Len(t, attrs, 3)
	assert.Equal(t, attribute.String("arena.player", "Kite"), attrs[2])
}
