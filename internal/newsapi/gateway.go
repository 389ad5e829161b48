// Package newsapi is the fetch gateway for the upstream headline service.
package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-news-reader/internal/config"
	"github.com/samvad-hq/samvad-news-reader/internal/domain"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
	"github.com/samvad-hq/samvad-news-reader/pkg/httpclient"
)

const (
	endpointTopHeadlines = "top-headlines"
	endpointEverything   = "everything"

	DefaultCountry        = "us"
	DefaultMaxQueryLength = 500
)

// Options configures a Gateway.
type Options struct {
	BaseURL        string
	APIKey         string
	Country        string
	MaxQueryLength int
}

// OptionsFromConfig maps the loaded configuration onto gateway options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Country:        cfg.Country,
		MaxQueryLength: cfg.MaxQueryLength,
	}
}

// Gateway issues requests against the headline service and decodes the
// responses. It holds no mutable state and is safe for concurrent use.
type Gateway struct {
	urls     URLBuilder
	token    string
	country  string
	maxQuery int
	client   httpclient.Client
	log      logger.Logger
}

// New builds a Gateway. A blank API key is reported as config.ErrMissingAPIKey.
func New(opts Options, client httpclient.Client, log logger.Logger) (*Gateway, error) {
	token := strings.TrimSpace(opts.APIKey)
	if token == "" {
		return nil, fmt.Errorf("newsapi gateway: %w", config.ErrMissingAPIKey)
	}
	if client == nil {
		return nil, errors.New("newsapi gateway: http client must not be nil")
	}
	urls, err := NewURLBuilder(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("newsapi gateway: %w", err)
	}

	country := strings.ToLower(strings.TrimSpace(opts.Country))
	if country == "" {
		country = DefaultCountry
	}
	maxQuery := opts.MaxQueryLength
	if maxQuery <= 0 {
		maxQuery = DefaultMaxQueryLength
	}

	return &Gateway{
		urls:     urls,
		token:    token,
		country:  country,
		maxQuery: maxQuery,
		client:   client,
		log:      logger.Ensure(log),
	}, nil
}

// BuildURL exposes the gateway's URL construction.
func (g *Gateway) BuildURL(endpoint string, params map[string]string) (string, error) {
	return g.urls.Build(endpoint, params)
}

// TopStories fetches the top headlines for the configured country.
func (g *Gateway) TopStories(ctx context.Context) domain.FetchResult {
	return g.fetch(ctx, "top headlines", endpointTopHeadlines, map[string]string{"country": g.country})
}

// SearchArticles fetches articles matching query. Queries whose trimmed
// length exceeds the limit fail with a validation error before any I/O.
func (g *Gateway) SearchArticles(ctx context.Context, query string) domain.FetchResult {
	const op = "search articles"
	if n := utf8.RuneCountInString(strings.TrimSpace(query)); n > g.maxQuery {
		return domain.Failure(domain.NewFetchError(domain.KindValidation, op,
			fmt.Errorf("query is %d characters, limit is %d", n, g.maxQuery)))
	}
	return g.fetch(ctx, op, endpointEverything, map[string]string{"q": query})
}

func (g *Gateway) fetch(ctx context.Context, op, endpoint string, params map[string]string) domain.FetchResult {
	u, err := g.urls.Build(endpoint, params)
	if err != nil {
		return domain.Failure(domain.NewFetchError(domain.KindValidation, op, err))
	}

	resp, err := g.client.Get(ctx, u, g.headers())
	if err != nil {
		return domain.Failure(domain.NewFetchError(domain.KindNetwork, op, err))
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		msg := upstreamError(body)
		if msg == "" {
			msg = responseSnippet(body)
		}
		return domain.Failure(domain.NewFetchError(domain.KindNetwork, op,
			fmt.Errorf("status %d: %s", code, msg)))
	}

	articles, err := decodeArticles(body)
	if err != nil {
		return domain.Failure(domain.NewFetchError(domain.KindDecode, op, err))
	}

	g.log.DebugObj("articles fetched", "fetch_result", map[string]any{
		"op":       op,
		"endpoint": endpoint,
		"count":    len(articles),
	})
	return domain.Success(articles)
}

func (g *Gateway) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + g.token,
		"Accept":        "application/json",
	}
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
