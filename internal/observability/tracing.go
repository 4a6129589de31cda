package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by this service
const TracerName = "github.com/upb/llm-datagen"

// Tracer returns the tracer from the globally configured provider. Without an
// SDK installed this is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
