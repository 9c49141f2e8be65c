package logging

import (
	"context"
	"log/slog"
	"testing"

	"clipforge/internal/services"
)

func TestContextFields(t *testing.T) {
	ctx := services.WithRequestID(services.WithComponent(services.WithJobID(context.Background(), "job-1"), "api"), "req-9")

	fields := ContextFields(ctx)
	got := map[string]string{}
	for _, attr := range fields {
		got[attr.Key] = attr.Value.String()
	}
	if got[FieldJobID] != "job-1" {
		t.Fatalf("expected job id field, got %v", got)
	}
	if got[FieldComponent] != "api" {
		t.Fatalf("expected component field, got %v", got)
	}
	if got[FieldCorrelationID] != "req-9" {
		t.Fatalf("expected correlation field, got %v", got)
	}
}

func TestContextFieldsEmpty(t *testing.T) {
	if fields := ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields from bare context, got %v", fields)
	}
}

type captureHandler struct {
	attrs []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, record slog.Record) error {
	record.Attrs(func(attr slog.Attr) bool {
		h.attrs = append(h.attrs, attr)
		return true
	})
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = append(h.attrs, attrs...)
	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestWithContextAugmentsLogger(t *testing.T) {
	handler := &captureHandler{}
	base := slog.New(handler)

	ctx := services.WithJobID(context.Background(), "job-7")
	WithContext(ctx, base).Info("hello")

	found := false
	for _, attr := range handler.attrs {
		if attr.Key == FieldJobID && attr.Value.String() == "job-7" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected job id attribute on derived logger, got %v", handler.attrs)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	if logger := WithContext(context.Background(), nil); logger == nil {
		t.Fatal("expected a usable logger")
	}
}
