package domain

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id
	"encoding/hex"
	"time"
)

// Article is a single headline as returned by the upstream news service.
// Description, URL and ImageURL are optional; an empty string means absent.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// HasURL reports whether the article can be opened in a browser view.
func (a Article) HasURL() bool { return a.URL != "" }

// HasImage reports whether the article carries a thumbnail URL.
func (a Article) HasImage() bool { return a.ImageURL != "" }

// ID is a stable identifier derived from the article URL, or from the title
// for articles without one.
func (a Article) ID() string {
	key := a.URL
	if key == "" {
		key = "title:" + a.Title
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// SearchRequest is a query captured by the debouncer at arm time.
type SearchRequest struct {
	Query       string
	ScheduledAt time.Time
}
