package sinks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-news-reader/pkg/httpclient"
)

type httpSink struct {
	name    string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPSink(_ context.Context, cfg Config, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.Name)
	}
	c := cfg.HTTP
	method := c.Method
	if method == "" {
		method = httpDefaultMethod
	}
	timeout := c.TimeoutSeconds
	if timeout <= 0 {
		timeout = httpDefaultTimeoutSeconds
	}
	return &httpSink{
		name:    cfg.Name,
		method:  method,
		url:     c.URL,
		headers: c.Headers,
		client:  httpclient.NewRestyHTTPClient(time.Duration(timeout) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpSink) Name() string { return h.name }
func (h *httpSink) Kind() string { return KindHTTP }

func (h *httpSink) Deliver(ctx context.Context, evt Event) error {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(evt)
	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}
	h.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink":   h.name,
		"id":     evt.ID,
		"status": resp.StatusCode(),
	})
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
