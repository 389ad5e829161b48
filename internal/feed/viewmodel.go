// Package feed holds the presentation side of a result set: view-models,
// the current list and per-row thumbnails.
package feed

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samvad-hq/samvad-news-reader/internal/domain"
)

// NoDescription is shown when an article has no usable description.
const NoDescription = "No Description"

// Sanitizer turns upstream descriptions, which may carry markup, into plain text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer that strips every tag.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// PlainText strips markup, unescapes entities and collapses whitespace.
func (s *Sanitizer) PlainText(raw string) string {
	if s == nil || s.policy == nil {
		return strings.Join(strings.Fields(raw), " ")
	}
	stripped := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Join(strings.Fields(stripped), " ")
}

// ViewModel is one display row. Its thumbnail bytes are cached once: the
// first successful store wins and is never evicted.
type ViewModel struct {
	Title      string
	Subtitle   string
	ImageURL   string
	ArticleURL string

	mu    sync.Mutex
	image []byte
}

// NewViewModel projects an article for display.
func NewViewModel(a domain.Article, s *Sanitizer) *ViewModel {
	subtitle := s.PlainText(a.Description)
	if subtitle == "" {
		subtitle = NoDescription
	}
	return &ViewModel{
		Title:      strings.TrimSpace(a.Title),
		Subtitle:   subtitle,
		ImageURL:   strings.TrimSpace(a.ImageURL),
		ArticleURL: strings.TrimSpace(a.URL),
	}
}

// Image returns the cached thumbnail.
func (vm *ViewModel) Image() ([]byte, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.image, vm.image != nil
}

// StoreImage caches b unless an image is already cached. It reports whether b was stored.
func (vm *ViewModel) StoreImage(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.image != nil {
		return false
	}
	vm.image = b
	return true
}
