package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/browser"
	"github.com/samvad-hq/samvad-news-reader/internal/dispatch"
	"github.com/samvad-hq/samvad-news-reader/internal/domain"
	"github.com/samvad-hq/samvad-news-reader/internal/feed"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
	"github.com/samvad-hq/samvad-news-reader/internal/search"
)

// Result set origins.
const (
	SourceTopStories = "top"
	SourceSearch     = "search"
)

// Gateway is the fetch surface the reader needs.
type Gateway interface {
	TopStories(ctx context.Context) domain.FetchResult
	SearchArticles(ctx context.Context, query string) domain.FetchResult
}

// Update describes a result set that was applied to the list.
type Update struct {
	Source   string
	Query    string
	Seq      uint64
	Snapshot feed.Snapshot
}

// ReaderOptions tunes the reader's search pipeline.
type ReaderOptions struct {
	Debounce         time.Duration
	EmptyQueryPolicy search.EmptyQueryPolicy
	MaxQueryLength   int
	// Scheduler overrides the debounce timer source; nil uses real timers.
	Scheduler search.Scheduler
}

// Reader is the core behind a headline screen: it loads top stories, runs
// debounced searches and keeps the displayed list. All list state lives on
// the dispatcher's context; fetches run on their own goroutines and post
// their results back.
type Reader struct {
	gw     Gateway
	disp   dispatch.Dispatcher
	seq    *search.Sequencer
	ctrl   *search.Controller
	filter search.EditFilter
	images *feed.ImageLoader
	opener browser.Opener
	log    logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// main context only
	list     *feed.List
	current  Update
	onUpdate func(Update)
	onError  func(source, query string, err error)
}

// NewReader wires a reader. images and opener may be nil.
func NewReader(gw Gateway, disp dispatch.Dispatcher, images *feed.ImageLoader, opener browser.Opener, log logger.Logger, opts ReaderOptions) (*Reader, error) {
	if gw == nil {
		return nil, errors.New("gateway must not be nil")
	}
	if disp == nil {
		return nil, errors.New("dispatcher must not be nil")
	}
	if opener == nil {
		opener = browser.System
	}
	log = logger.Ensure(log)

	ctx, cancel := context.WithCancel(context.Background())
	r := &Reader{
		gw:     gw,
		disp:   disp,
		seq:    &search.Sequencer{},
		filter: search.NewEditFilter(opts.MaxQueryLength),
		images: images,
		opener: opener,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		list:   feed.NewList(nil),
	}

	ctrlOpts := []search.Option{
		search.WithSequencer(r.seq),
		search.WithEmptyQueryPolicy(opts.EmptyQueryPolicy),
		search.WithOnCleared(r.LoadTopStories),
		search.WithLogger(log),
		search.WithContext(ctx),
	}
	if opts.Debounce > 0 {
		ctrlOpts = append(ctrlOpts, search.WithDelay(opts.Debounce))
	}
	if opts.Scheduler != nil {
		ctrlOpts = append(ctrlOpts, search.WithScheduler(opts.Scheduler))
	}

	ctrl, err := search.NewController(gw.SearchArticles, r.deliverSearch, ctrlOpts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build search controller: %w", err)
	}
	r.ctrl = ctrl
	return r, nil
}

// OnUpdate registers the observer run on the main context after a result set is applied.
func (r *Reader) OnUpdate(fn func(Update)) { r.onUpdate = fn }

// OnError registers the observer run on the main context when a fetch fails.
func (r *Reader) OnError(fn func(source, query string, err error)) { r.onError = fn }

// Controller exposes the debounced search controller.
func (r *Reader) Controller() *search.Controller { return r.ctrl }

// LoadTopStories fetches the top headlines and replaces the list when the
// response is still the newest one.
func (r *Reader) LoadTopStories() {
	seq := r.seq.Next()
	go func() {
		res := r.gw.TopStories(r.ctx)
		r.disp.Post(func() { r.apply(SourceTopStories, "", seq, res) })
	}()
}

// AllowEdit is the keystroke guard for the search field.
func (r *Reader) AllowEdit(proposed string) bool { return r.filter.Allow(proposed) }

// OnQueryChanged feeds the search field's text into the debouncer.
func (r *Reader) OnQueryChanged(text string) { r.ctrl.OnQueryChanged(text) }

// Submit runs the pending search without waiting for the quiet period.
func (r *Reader) Submit() bool { return r.ctrl.Flush() }

// Current returns the last applied update. Main context only.
func (r *Reader) Current() Update { return r.current }

// Len returns the number of rows. Main context only.
func (r *Reader) Len() int { return r.list.Len() }

// Row returns the view-model at i. Main context only.
func (r *Reader) Row(i int) (*feed.ViewModel, bool) { return r.list.At(i) }

// LoadImage delivers row i's thumbnail through the dispatcher. Main context only.
func (r *Reader) LoadImage(i int, done feed.ImageCompletion) error {
	if r.images == nil {
		return errors.New("image loading is not configured")
	}
	vm, ok := r.list.At(i)
	if !ok {
		return fmt.Errorf("row %d out of range", i)
	}
	r.images.Load(r.ctx, vm, done)
	return nil
}

// Open shows row i's article in the browser view. Main context only.
func (r *Reader) Open(i int) error {
	a, ok := r.list.Article(i)
	if !ok {
		return fmt.Errorf("row %d out of range", i)
	}
	if !a.HasURL() {
		return browser.ErrNoURL
	}
	if err := r.opener.Open(a.URL); err != nil {
		return fmt.Errorf("open article: %w", err)
	}
	return nil
}

// Close cancels the pending search and every in-flight fetch.
func (r *Reader) Close() {
	r.ctrl.Close()
	r.cancel()
}

func (r *Reader) deliverSearch(o search.Outcome) {
	r.disp.Post(func() { r.apply(SourceSearch, o.Query, o.Seq, o.Result) })
}

// apply runs on the main context.
func (r *Reader) apply(source, query string, seq uint64, res domain.FetchResult) {
	if !res.OK() {
		r.log.ErrorObj("fetch failed; keeping current list", "fetch_error", map[string]any{
			"source": source,
			"query":  query,
			"seq":    seq,
			"kind":   res.Kind().String(),
			"error":  res.Err().Error(),
		})
		if r.onError != nil {
			r.onError(source, query, res.Err())
		}
		return
	}

	if !r.seq.IsLatest(seq) {
		r.log.DebugObj("stale response dropped", "stale_response", map[string]any{
			"source": source,
			"query":  query,
			"seq":    seq,
			"latest": r.seq.Latest(),
		})
		return
	}

	r.list.Replace(res.Articles())
	r.current = Update{
		Source:   source,
		Query:    query,
		Seq:      seq,
		Snapshot: r.list.Snapshot(),
	}
	r.log.InfoObj("result set applied", "result_set", map[string]any{
		"source": source,
		"query":  query,
		"seq":    seq,
		"count":  r.list.Len(),
	})
	if r.onUpdate != nil {
		r.onUpdate(r.current)
	}
}
