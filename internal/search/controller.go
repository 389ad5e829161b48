// Package search turns a stream of search-field edits into debounced
// article searches.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/domain"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
)

// DefaultDelay is the quiet period after the last edit before a search fires.
const DefaultDelay = 1500 * time.Millisecond

// SearchFunc performs the search for a captured query.
type SearchFunc func(ctx context.Context, query string) domain.FetchResult

// Outcome is what a fired timer delivers.
type Outcome struct {
	Query  string
	Seq    uint64
	Result domain.FetchResult
}

// DeliverFunc receives outcomes on the goroutine that ran the search.
type DeliverFunc func(Outcome)

// State of the controller's timer slot.
type State int

const (
	Idle State = iota
	Scheduled
)

func (s State) String() string {
	if s == Scheduled {
		return "scheduled"
	}
	return "idle"
}

// EmptyQueryPolicy decides what a blank search field does.
type EmptyQueryPolicy int

const (
	// EmptyIgnore neither cancels nor arms.
	EmptyIgnore EmptyQueryPolicy = iota
	// EmptyCancel drops the pending search.
	EmptyCancel
	// EmptyReset drops the pending search and runs the OnCleared hook.
	EmptyReset
)

// ParseEmptyQueryPolicy maps "ignore", "cancel" and "reset" onto policies.
func ParseEmptyQueryPolicy(s string) (EmptyQueryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return EmptyIgnore, nil
	case "cancel":
		return EmptyCancel, nil
	case "reset":
		return EmptyReset, nil
	default:
		return EmptyIgnore, fmt.Errorf("unknown empty query policy %q", s)
	}
}

// Timer is the handle of an armed timer.
type Timer interface {
	Stop() bool
}

// Scheduler arms timers. The default uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Option customizes a Controller.
type Option func(*Controller)

func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithSequencer shares request tags with other fetch paths.
func WithSequencer(s *Sequencer) Option {
	return func(c *Controller) {
		if s != nil {
			c.seq = s
		}
	}
}

func WithEmptyQueryPolicy(p EmptyQueryPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithOnCleared sets the hook run by EmptyReset.
func WithOnCleared(fn func()) Option {
	return func(c *Controller) { c.onCleared = fn }
}

func WithLogger(log logger.Logger) Option {
	return func(c *Controller) { c.log = logger.Ensure(log) }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithContext sets the parent context of every search; Close cancels it.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.parent = ctx
		}
	}
}

// Controller owns a single pending-timer slot. Arming always cancels the
// previous timer under the same lock, and a fired timer only searches if it
// is still the current generation, so a superseded query never reaches the
// search func.
type Controller struct {
	search    SearchFunc
	deliver   DeliverFunc
	onCleared func()
	seq       *Sequencer
	sched     Scheduler
	now       func() time.Time
	delay     time.Duration
	policy    EmptyQueryPolicy
	log       logger.Logger
	parent    context.Context

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	timer   Timer
	pending *domain.SearchRequest
	gen     uint64
	closed  bool
}

// NewController builds a controller that calls search after the quiet period
// and hands the outcome to deliver.
func NewController(search SearchFunc, deliver DeliverFunc, opts ...Option) (*Controller, error) {
	if search == nil {
		return nil, errors.New("search func must not be nil")
	}
	if deliver == nil {
		return nil, errors.New("deliver func must not be nil")
	}

	c := &Controller{
		search:  search,
		deliver: deliver,
		seq:     &Sequencer{},
		sched:   realScheduler{},
		now:     time.Now,
		delay:   DefaultDelay,
		policy:  EmptyIgnore,
		log:     logger.NopLogger{},
		parent:  context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.parent)
	return c, nil
}

// Delay returns the configured quiet period.
func (c *Controller) Delay() time.Duration { return c.delay }

// OnQueryChanged reacts to the search field's current text.
func (c *Controller) OnQueryChanged(text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		c.onEmpty()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.cancelLocked()
	gen := c.gen
	c.pending = &domain.SearchRequest{Query: query, ScheduledAt: c.now().Add(c.delay)}
	c.timer = c.sched.AfterFunc(c.delay, func() { c.fire(gen) })
}

// Flush fires the pending search now instead of waiting out the delay.
// It reports whether a search was pending.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if c.closed || c.pending == nil {
		c.mu.Unlock()
		return false
	}
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	go c.fire(gen)
	return true
}

// Pending returns the armed request, if any.
func (c *Controller) Pending() (domain.SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return domain.SearchRequest{}, false
	}
	return *c.pending, true
}

// State reports whether a timer is armed.
func (c *Controller) State() State {
	if _, ok := c.Pending(); ok {
		return Scheduled
	}
	return Idle
}

// Cancel drops the pending search, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
}

// Close cancels the pending timer and any in-flight search context. Later
// edits are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelLocked()
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) onEmpty() {
	switch c.policy {
	case EmptyCancel:
		c.Cancel()
	case EmptyReset:
		c.mu.Lock()
		closed := c.closed
		c.cancelLocked()
		c.mu.Unlock()
		if !closed && c.onCleared != nil {
			c.onCleared()
		}
	}
}

// cancelLocked stops the armed timer and bumps the generation so a timer
// whose Stop lost the race to expiry still finds itself stale.
func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.gen++
}

// fire runs at most once per armed timer.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.pending == nil {
		c.mu.Unlock()
		return
	}
	req := *c.pending
	c.pending = nil
	c.timer = nil
	seq := c.seq.Next()
	ctx := c.ctx
	c.mu.Unlock()

	c.log.DebugObj("search fired", "search_request", map[string]any{
		"query": req.Query,
		"seq":   seq,
	})

	res := c.search(ctx, req.Query)
	if !res.OK() {
		c.log.ErrorObj("search failed", "search_error", map[string]any{
			"query": req.Query,
			"seq":   seq,
			"kind":  res.Kind().String(),
			"error": res.Err().Error(),
		})
	}
	c.deliver(Outcome{Query: req.Query, Seq: seq, Result: res})
}
