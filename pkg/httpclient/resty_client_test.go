package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGetPassesHeadersAndReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "reader-test" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "foo bar" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewRestyClientWithOptions(Options{Timeout: 2 * time.Second, UserAgent: "reader-test"})
	resp, err := client.Get(context.Background(), srv.URL+"/everything?q=foo%20bar", map[string]string{
		"Authorization": "Bearer token",
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("StatusCode = %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"ok":true}` {
		t.Fatalf("Body = %q", resp.Body())
	}
	if resp.Header("Content-Type") != "application/json" {
		t.Fatalf("Content-Type = %q", resp.Header("Content-Type"))
	}
}

func TestRestyClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewRestyClient(time.Second).Get(context.Background(), url, nil); err == nil {
		t.Fatalf("expected transport error against closed server")
	}
}
