package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-news-reader/internal/dispatch"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
	"github.com/samvad-hq/samvad-news-reader/pkg/httpclient"
	"golang.org/x/sync/singleflight"
)

const defaultMaxImageBytes = 5 << 20

// ErrNoImage is reported for rows that have no thumbnail to load.
var ErrNoImage = errors.New("row has no image")

// ImageCompletion receives a row's thumbnail on the main context.
type ImageCompletion func(data []byte, err error)

// ImageLoader lazily fetches row thumbnails. Concurrent loads of the same URL
// share one request; the bytes are cached on the view-model.
type ImageLoader struct {
	client   httpclient.Client
	disp     dispatch.Dispatcher
	resolver *OGResolver
	group    singleflight.Group
	maxBytes int
	log      logger.Logger
}

// ImageLoaderOption customizes an ImageLoader.
type ImageLoaderOption func(*ImageLoader)

// WithOGFallback resolves og:image from the article page for rows without an image URL.
func WithOGFallback(enabled bool) ImageLoaderOption {
	return func(l *ImageLoader) {
		if enabled {
			l.resolver = NewOGResolver(l.client)
		} else {
			l.resolver = nil
		}
	}
}

// WithMaxImageBytes caps the accepted thumbnail size.
func WithMaxImageBytes(n int) ImageLoaderOption {
	return func(l *ImageLoader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

func WithImageLogger(log logger.Logger) ImageLoaderOption {
	return func(l *ImageLoader) { l.log = logger.Ensure(log) }
}

// NewImageLoader builds a loader that delivers completions through disp.
func NewImageLoader(client httpclient.Client, disp dispatch.Dispatcher, opts ...ImageLoaderOption) *ImageLoader {
	if disp == nil {
		disp = dispatch.Immediate{}
	}
	l := &ImageLoader{
		client:   client,
		disp:     disp,
		maxBytes: defaultMaxImageBytes,
		log:      logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load delivers vm's thumbnail to done, fetching it at most once per view-model.
func (l *ImageLoader) Load(ctx context.Context, vm *ViewModel, done ImageCompletion) {
	if done == nil {
		done = func([]byte, error) {}
	}
	if vm == nil {
		l.disp.Post(func() { done(nil, ErrNoImage) })
		return
	}
	if data, ok := vm.Image(); ok {
		l.disp.Post(func() { done(data, nil) })
		return
	}

	go func() {
		data, err := l.load(ctx, vm)
		if err != nil {
			if !errors.Is(err, ErrNoImage) {
				l.log.WarnObj("thumbnail load failed", "image_error", map[string]any{
					"image_url":   vm.ImageURL,
					"article_url": vm.ArticleURL,
					"error":       err.Error(),
				})
			}
			l.disp.Post(func() { done(nil, err) })
			return
		}
		l.disp.Post(func() { done(data, nil) })
	}()
}

func (l *ImageLoader) load(ctx context.Context, vm *ViewModel) ([]byte, error) {
	imageURL := vm.ImageURL
	if imageURL == "" {
		if l.resolver == nil || vm.ArticleURL == "" {
			return nil, ErrNoImage
		}
		v, err, _ := l.group.Do("og:"+vm.ArticleURL, func() (any, error) {
			return l.resolver.Resolve(ctx, vm.ArticleURL)
		})
		if err != nil {
			return nil, fmt.Errorf("resolve og:image: %w", err)
		}
		imageURL = v.(string)
	}

	v, err, _ := l.group.Do("img:"+imageURL, func() (any, error) {
		return l.fetch(ctx, imageURL)
	})
	if err != nil {
		return nil, err
	}

	vm.StoreImage(v.([]byte))
	// Another load may have won the race; always hand back what is cached.
	data, _ := vm.Image()
	return data, nil
}

func (l *ImageLoader) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := l.client.Get(ctx, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("image returned status %d", resp.StatusCode())
	}
	if ct := resp.Header("Content-Type"); !isImageContentType(ct) {
		return nil, fmt.Errorf("image returned content type %q", ct)
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("image body is empty")
	}
	if len(body) > l.maxBytes {
		return nil, fmt.Errorf("image is %d bytes, limit is %d", len(body), l.maxBytes)
	}
	return body, nil
}

// isImageContentType accepts image/* and the untyped responses some CDNs send.
func isImageContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		return true
	}
	return strings.HasPrefix(ct, "image/")
}
