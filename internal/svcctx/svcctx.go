// Package svcctx provides service context for dependency injection via context.
// This package is separate from pipeline to avoid import cycles with stages.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/cardforge/cardforge/internal/cache"
	"github.com/cardforge/cardforge/internal/config"
	"github.com/cardforge/cardforge/internal/embed"
	"github.com/cardforge/cardforge/internal/home"
	"github.com/cardforge/cardforge/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config   *config.Manager
	Caller   *providers.Caller
	Embedder embed.Embedder
	Cache    *cache.Store
	Logger   *slog.Logger
	Home     *home.Dir
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

// LoggerFrom extracts the logger from context. Falls back to slog.Default
// so callers never need a nil check.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// CallerFrom extracts the LLM caller from context.
func CallerFrom(ctx context.Context) *providers.Caller {
	if s := ServicesFrom(ctx); s != nil {
		return s.Caller
	}
	return nil
}

// EmbedderFrom extracts the embedder from context.
func EmbedderFrom(ctx context.Context) embed.Embedder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Embedder
	}
	return nil
}

// CacheFrom extracts the cache store from context.
func CacheFrom(ctx context.Context) *cache.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Cache
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
