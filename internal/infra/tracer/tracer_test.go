package tracer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"searchagent/internal/infra/config"
)

func TestSetupDisabled(t *testing.T) {
	cfg := config.TracerConfig{Enabled: false}
	shutdown, err := Setup(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer shutdown(context.Background())

	tp := otel.GetTracerProvider()
	if _, ok := tp.(noop.TracerProvider); !ok {
		t.Errorf("expected noop provider, got %T", tp)
	}
}

func TestSetupNoopAndEmptyExporter(t *testing.T) {
	for _, exporter := range []string{"noop", ""} {
		t.Run("exporter="+exporter, func(t *testing.T) {
			cfg := config.TracerConfig{Enabled: true, Exporter: exporter}
			shutdown, err := Setup(context.Background(), cfg, io.Discard)
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			defer shutdown(context.Background())

			if _, ok := otel.GetTracerProvider().(noop.TracerProvider); !ok {
				t.Errorf("expected noop provider, got %T", otel.GetTracerProvider())
			}
		})
	}
}

func TestSetupStdoutWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.TracerConfig{Enabled: true, Exporter: "stdout"}
	shutdown, err := Setup(context.Background(), cfg, &buf)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	_, span := StartSpan(context.Background(), "tool.search")
	SetOK(span)
	span.End()

	// Shutdown flushes the batcher.
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	otel.SetTracerProvider(noop.NewTracerProvider())

	if !strings.Contains(buf.String(), "tool.search") {
		t.Errorf("exported spans should mention the span name, got %q", buf.String())
	}
}

func TestSetupUnsupportedExporter(t *testing.T) {
	cfg := config.TracerConfig{Enabled: true, Exporter: "invalid"}
	_, err := Setup(context.Background(), cfg, io.Discard)
	if err == nil {
		t.Error("expected error for unsupported exporter")
	}
}

func TestStartSpanAndHelpers(t *testing.T) {
	otel.SetTracerProvider(noop.NewTracerProvider())

	ctx, span := StartSpan(context.Background(), "test-span")
	if ctx == nil {
		t.Error("context should not be nil")
	}

	SetOK(span)
	RecordError(span, errors.New("test error"))
	span.End()
}

func TestAttrHelpers(t *testing.T) {
	s := StringAttr("key", "value")
	if string(s.Key) != "key" || s.Value.AsString() != "value" {
		t.Errorf("StringAttr = %v", s)
	}

	i := IntAttr("count", 42)
	if string(i.Key) != "count" || i.Value.AsInt64() != 42 {
		t.Errorf("IntAttr = %v", i)
	}

	f := FloatAttr("temperature", 0.2)
	if string(f.Key) != "temperature" || f.Value.AsFloat64() != 0.2 {
		t.Errorf("FloatAttr = %v", f)
	}
}
