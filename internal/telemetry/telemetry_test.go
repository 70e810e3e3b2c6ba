package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(false, &buf, "leafcheck", "test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("disabled tracing wrote output")
	}
}

func TestSetupWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(true, &buf, "leafcheck", "test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "runner.batch")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "runner.batch") || !strings.Contains(out, "leafcheck") {
		t.Fatalf("span not exported: %s", out)
	}
}
