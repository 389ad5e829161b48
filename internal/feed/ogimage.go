package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-news-reader/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

// OGResolver finds a thumbnail for articles the upstream sent without one,
// by reading the article page's Open Graph tags.
type OGResolver struct {
	client httpclient.Client
}

// NewOGResolver constructs a resolver with the provided HTTP client.
func NewOGResolver(client httpclient.Client) *OGResolver {
	return &OGResolver{client: client}
}

// Resolve fetches articleURL and returns its absolute og:image URL.
func (r *OGResolver) Resolve(ctx context.Context, articleURL string) (string, error) {
	resp, err := r.client.Get(ctx, articleURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("article page returned status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	img, err := parseImageMeta(body)
	if err != nil {
		return "", err
	}
	img = resolveURL(img, articleURL)
	if img == "" {
		return "", ErrNoImage
	}
	return img, nil
}

func parseImageMeta(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return firstNonEmpty(
		extract(`meta[property="og:image"]`),
		extract(`meta[property="og:image:url"]`),
		extract(`meta[name="twitter:image"]`),
	), nil
}

// resolveURL makes ref absolute against base; unusable input yields "".
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	abs := baseURL.ResolveReference(refURL)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
