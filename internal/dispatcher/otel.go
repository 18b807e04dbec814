package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/dustline/arena/internal/dispatcher"

// meterOrGlobal falls back to the global meter provider, a no-op unless one
// was installed.
func meterOrGlobal(m metric.Meter) metric.Meter {
	if m != nil {
		return m
	}
	return otel.Meter(instrumentationName)
}
