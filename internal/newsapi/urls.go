package newsapi

import (
	"fmt"
	"net/url"
	"strings"
)

// URLBuilder joins endpoint paths and query parameters onto a fixed base URL.
type URLBuilder struct {
	base *url.URL
}

// NewURLBuilder parses base; it must be an absolute http(s) URL.
func NewURLBuilder(base string) (URLBuilder, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return URLBuilder{}, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return URLBuilder{}, fmt.Errorf("base url %q must be http or https", base)
	}
	if u.Host == "" {
		return URLBuilder{}, fmt.Errorf("base url %q has no host", base)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return URLBuilder{base: u}, nil
}

// Build returns base + endpoint with params encoded exactly once.
// Keys are emitted in sorted order.
func (b URLBuilder) Build(endpoint string, params map[string]string) (string, error) {
	if b.base == nil {
		return "", fmt.Errorf("url builder has no base url")
	}
	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return "", fmt.Errorf("endpoint is empty")
	}

	u := b.base.JoinPath(endpoint)
	if len(params) > 0 {
		q := make(url.Values, len(params))
		for k, v := range params {
			if strings.TrimSpace(k) == "" {
				continue
			}
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
