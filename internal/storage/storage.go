// Package storage remembers which articles the relay has already delivered.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by storage_type.
const (
	TypeNone  = "none"
	TypeBBolt = "bbolt"
)

// Store records relayed article IDs for a bounded retention window.
type Store interface {
	Seen(id string) (bool, error)
	Mark(id string) error
	Close() error
}

// Options controls retention for concrete backends.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

const (
	defaultTTL             = 2 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// Open creates the configured storage backend.
func Open(typ, path string, opts Options) (Store, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = defaultCleanupInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// noopStore never remembers anything, so every article is relayed on every pass.
type noopStore struct{}

func (noopStore) Seen(string) (bool, error) { return false, nil }
func (noopStore) Mark(string) error         { return nil }
func (noopStore) Close() error              { return nil }
