package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/config"
	"github.com/samvad-hq/samvad-news-reader/internal/domain"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
	"github.com/samvad-hq/samvad-news-reader/internal/storage"
	"github.com/samvad-hq/samvad-news-reader/pkg/sinks"
)

// TopStoriesFetcher is the part of the gateway the relay needs.
type TopStoriesFetcher interface {
	TopStories(ctx context.Context) domain.FetchResult
}

// Deliverer fans an event out to downstream sinks.
type Deliverer interface {
	Deliver(ctx context.Context, evt sinks.Event) (int, error)
	Size() int
}

// RelayStats summarizes one relay pass.
type RelayStats struct {
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Relayed int `json:"relayed"`
	Failed  int `json:"failed"`
}

// RelayOptions configures a Relay.
type RelayOptions struct {
	Country  string
	Interval time.Duration
	// Now overrides the event timestamp clock.
	Now func() time.Time
}

// Relay periodically forwards new top stories to the configured sinks,
// skipping articles it has already relayed.
type Relay struct {
	gw       TopStoriesFetcher
	store    storage.Store
	out      Deliverer
	country  string
	interval time.Duration
	now      func() time.Time
	log      logger.Logger
	closers  []func() error
}

// NewRelay wires a relay from explicit parts.
func NewRelay(gw TopStoriesFetcher, store storage.Store, out Deliverer, opts RelayOptions, log logger.Logger) (*Relay, error) {
	if gw == nil {
		return nil, errors.New("gateway must not be nil")
	}
	if out == nil || out.Size() == 0 {
		return nil, errors.New("no sinks configured")
	}
	if store == nil {
		store, _ = storage.Open(storage.TypeNone, "", storage.Options{})
	}
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Relay{
		gw:       gw,
		store:    store,
		out:      out,
		country:  opts.Country,
		interval: opts.Interval,
		now:      opts.Now,
		log:      logger.Ensure(log),
	}, nil
}

// NewRelayFromConfig loads the sinks file and opens the dedupe store named by cfg.
func NewRelayFromConfig(ctx context.Context, cfg *config.Config, gw TopStoriesFetcher, log logger.Logger) (*Relay, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	set, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := set.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no sinks enabled in %s", cfg.SinksFile)
	}
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	fanout := sinks.NewFanout(built)
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": fanout.Size(),
		"sinks": fanout.Names(),
	})

	store, err := storage.Open(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanup,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanup.Seconds()),
	})

	r, err := NewRelay(gw, store, fanout, RelayOptions{Country: cfg.Country, Interval: cfg.RelayInterval}, log)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, err
	}
	r.closers = append(r.closers, fanout.Close)
	return r, nil
}

// Run relays once immediately and then on every interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	defer r.Close()

	r.log.InfoObj("relay loop starting", "relay_state", map[string]any{
		"sinks_count": r.out.Size(),
		"interval":    r.interval.String(),
		"country":     r.country,
	})

	if _, err := r.RunOnce(ctx); err != nil {
		r.log.ErrorObj("initial relay pass failed", "error", err.Error())
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("relay loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.ErrorObj("scheduled relay pass failed", "error", err.Error())
			}
		}
	}
}

// RunOnce fetches top stories and delivers the ones not relayed before. An
// article is remembered once at least one sink accepted it.
func (r *Relay) RunOnce(ctx context.Context) (RelayStats, error) {
	var stats RelayStats
	start := time.Now()

	res := r.gw.TopStories(ctx)
	if !res.OK() {
		return stats, fmt.Errorf("fetch top stories: %w", res.Err())
	}
	articles := res.Articles()
	stats.Fetched = len(articles)

	var errs []error
	for _, a := range articles {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		id := a.ID()
		seen, err := r.store.Seen(id)
		if err != nil {
			// Lookup failures count as unseen.
			r.log.WarnObj("dedupe lookup failed", "relay_store_error", map[string]any{
				"id":    id,
				"error": err.Error(),
			})
		}
		if seen {
			stats.Skipped++
			continue
		}

		delivered, err := r.out.Deliver(ctx, sinks.NewEvent(r.country, a, r.now()))
		if err != nil {
			errs = append(errs, fmt.Errorf("article %s: %w", id, err))
		}
		if delivered == 0 {
			stats.Failed++
			continue
		}
		stats.Relayed++
		if err := r.store.Mark(id); err != nil {
			errs = append(errs, fmt.Errorf("mark article %s: %w", id, err))
		}
	}

	r.log.InfoObj("relay pass completed", "relay_stats", map[string]any{
		"fetched":    stats.Fetched,
		"skipped":    stats.Skipped,
		"relayed":    stats.Relayed,
		"failed":     stats.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return stats, errors.Join(errs...)
}

// Close releases the store and any sink connections.
func (r *Relay) Close() error {
	if r == nil {
		return nil
	}
	errs := []error{r.store.Close()}
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	r.closers = nil
	return errors.Join(errs...)
}
