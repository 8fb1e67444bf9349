package svcctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackzampolin/scriptscan/internal/books"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/metrics"
)

func TestExtractors(t *testing.T) {
	t.Run("empty context falls back", func(t *testing.T) {
		ctx := context.Background()
		if ServicesFrom(ctx) != nil {
			t.Error("expected nil services")
		}
		if ConfigFrom(ctx) == nil {
			t.Error("expected default config")
		}
		if BooksFrom(ctx) != books.Default() {
			t.Error("expected default book registry")
		}
		if LoggerFrom(ctx) == nil {
			t.Error("expected default logger")
		}
		if EnginesFrom(ctx) != nil || MetricsFrom(ctx) != nil || HomeFrom(ctx) != nil {
			t.Error("expected nil services")
		}
	})

	t.Run("attached services", func(t *testing.T) {
		reg := engine.NewRegistry()
		rec := metrics.NewRecorder("run-1")
		logger := slog.Default().With("test", true)
		ctx := WithServices(context.Background(), &Services{
			Engines: reg,
			Metrics: rec,
			Logger:  logger,
		})
		if EnginesFrom(ctx) != reg {
			t.Error("wrong engine registry")
		}
		if MetricsFrom(ctx) != rec {
			t.Error("wrong recorder")
		}
		if LoggerFrom(ctx) != logger {
			t.Error("wrong logger")
		}
	})
}
