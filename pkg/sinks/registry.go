package sinks

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Sink from a config entry.
type Builder func(ctx context.Context, cfg Config, log Logger) (Sink, error)

// Registry maps sink kinds to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry knows every built-in sink kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindHTTP, newHTTPSink)
	r.Register(KindSQS, newSQSSink)
	r.Register(KindSNS, newSNSSink)
	r.Register(KindPubSub, newPubSubSink)
	return r
}

// Register associates a builder with a kind, replacing any previous one.
func (r *Registry) Register(kind string, b Builder) {
	if kind = strings.ToLower(strings.TrimSpace(kind)); kind == "" || b == nil {
		return
	}
	r.mu.Lock()
	r.builders[kind] = b
	r.mu.Unlock()
}

// Build creates the sink described by cfg.
func (r *Registry) Build(ctx context.Context, cfg Config, log Logger) (Sink, error) {
	r.mu.RLock()
	b := r.builders[strings.ToLower(cfg.Kind)]
	r.mu.RUnlock()
	if b == nil {
		return nil, fmt.Errorf("no sink registered for kind %q", cfg.Kind)
	}
	return b(ctx, cfg, ensureLogger(log))
}

// BuildAll builds every config in order and stops at the first failure.
func BuildAll(ctx context.Context, r *Registry, cfgs []Config, log Logger) ([]Sink, error) {
	if r == nil {
		return nil, fmt.Errorf("sink registry is nil")
	}
	out := make([]Sink, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := r.Build(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build sink %q: %w", cfg.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}
