package sinks

import (
	"encoding/json"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/domain"
)

// Event is the payload every sink receives.
type Event struct {
	ID        string         `json:"id"`
	Country   string         `json:"country"`
	Article   domain.Article `json:"article"`
	RelayedAt time.Time      `json:"relayed_at"`
}

// NewEvent wraps a top-story article for delivery.
func NewEvent(country string, article domain.Article, at time.Time) Event {
	return Event{
		ID:        article.ID(),
		Country:   country,
		Article:   article,
		RelayedAt: at.UTC(),
	}
}

// attributes are the routing fields copied onto queue and topic messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"article_id": e.ID}
	if e.Country != "" {
		attrs["country"] = e.Country
	}
	if e.Article.Source != "" {
		attrs["source"] = e.Article.Source
	}
	return attrs
}

func (e Event) payload() ([]byte, error) {
	return json.Marshal(e)
}
