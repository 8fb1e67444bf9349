// Package svcctx carries the services a command builds at startup through
// context, so subcommands and helpers extract only what they need.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/scriptscan/internal/books"
	"github.com/jackzampolin/scriptscan/internal/config"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/home"
	"github.com/jackzampolin/scriptscan/internal/metrics"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config  *config.Manager
	Engines *engine.Registry
	Books   *books.Registry
	Metrics *metrics.Recorder
	Logger  *slog.Logger
	Home    *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigFrom extracts the current configuration from context.
// Falls back to the defaults when no manager is attached.
func ConfigFrom(ctx context.Context) *config.Config {
	if s := ServicesFrom(ctx); s != nil && s.Config != nil {
		return s.Config.Get()
	}
	return config.DefaultConfig()
}

// EnginesFrom extracts the engine registry from context.
func EnginesFrom(ctx context.Context) *engine.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Engines
	}
	return nil
}

// BooksFrom extracts the book registry, defaulting to the built-in canon.
func BooksFrom(ctx context.Context) *books.Registry {
	if s := ServicesFrom(ctx); s != nil && s.Books != nil {
		return s.Books
	}
	return books.Default()
}

// MetricsFrom extracts the metrics recorder from context.
func MetricsFrom(ctx context.Context) *metrics.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
