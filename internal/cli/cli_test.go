package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/samvad-news-reader/internal/browser"
)

// syncBuffer is written from the dispatch loop and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type newsServer struct {
	srv *httptest.Server

	mu      sync.Mutex
	queries []string
}

func newNewsServer(t *testing.T) *newsServer {
	t.Helper()
	ns := &newsServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/top-headlines", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"source":{"name":"Wire"},"title":"Top one","description":"<b>Bold</b> claim","url":"https://example.com/top1"},
			{"source":{"name":"Wire"},"title":"Top two","description":null,"url":null}]}`)
	})
	mux.HandleFunc("/v2/everything", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		ns.mu.Lock()
		ns.queries = append(ns.queries, q)
		ns.mu.Unlock()
		fmt.Fprintf(w, `{"status":"ok","articles":[{"source":{"name":"Wire"},"title":"About %s","url":"https://example.com/search/%s"}]}`, q, q)
	})
	ns.srv = httptest.NewServer(mux)
	t.Cleanup(ns.srv.Close)
	return ns
}

func (ns *newsServer) searched() []string {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return append([]string(nil), ns.queries...)
}

func writeConfig(t *testing.T, baseURL string, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "newsreader.yaml")
	raw := fmt.Sprintf("api_key: test-token\nbase_url: %s/v2/\nhttp_timeout_seconds: 5\ndebounce_ms: 60000\n%s", baseURL, extra)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, e *env, stdin string, args ...string) (string, error) {
	t.Helper()
	if e.opener == nil {
		e.opener = browser.OpenerFunc(func(string) error { return nil })
	}
	e.logTo = io.Discard
	out := &syncBuffer{}
	root := newRootCommand(e)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTopPrintsHeadlines(t *testing.T) {
	ns := newNewsServer(t)
	out, err := execute(t, &env{}, "", "--config", writeConfig(t, ns.srv.URL, ""), "top")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	for _, want := range []string{" 1. Top one", "Bold claim", "https://example.com/top1", " 2. Top two", "No Description"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchJoinsArgsAndValidates(t *testing.T) {
	ns := newNewsServer(t)
	cfg := writeConfig(t, ns.srv.URL, "")

	out, err := execute(t, &env{}, "", "--config", cfg, "search", "--json", "go", "lang")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, `"title": "About go lang"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, &env{}, "", "--config", cfg, "search", strings.Repeat("a", 501)); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := ns.searched(); len(got) != 1 {
		t.Fatalf("searched = %v, the long query must not reach the server", got)
	}
}

func TestMissingAPIKeyIsReported(t *testing.T) {
	t.Setenv("API_KEY", "")
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("country: us\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := execute(t, &env{}, "", "--config", path, "top")
	if err == nil || !strings.Contains(err.Error(), "API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestWatchSearchesOnlyTheLastEdit(t *testing.T) {
	ns := newNewsServer(t)
	cfg := writeConfig(t, ns.srv.URL, "")

	out, err := execute(t, &env{}, "g\ngo\ngola\ngolang\n", "--config", cfg, "watch")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if got := ns.searched(); len(got) != 1 || got[0] != "golang" {
		t.Fatalf("searched = %v, want [golang]", got)
	}
	if !strings.Contains(out, "== top headlines ==") || !strings.Contains(out, `== results for "golang" ==`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestWatchOpensSelectedRow(t *testing.T) {
	ns := newNewsServer(t)
	cfg := writeConfig(t, ns.srv.URL, "")

	var mu sync.Mutex
	var opened []string
	e := &env{opener: browser.OpenerFunc(func(u string) error {
		mu.Lock()
		opened = append(opened, u)
		mu.Unlock()
		return nil
	})}

	out, err := execute(t, e, ":open 2\n:open 1\nnews\n:go\n:open 1\n:open x\n:q\n", "--config", cfg, "watch")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"https://example.com/top1", "https://example.com/search/news"}
	if len(opened) != 2 || opened[0] != want[0] || opened[1] != want[1] {
		t.Fatalf("opened = %v, want %v", opened, want)
	}
	if !strings.Contains(out, "cannot open article 2") || !strings.Contains(out, "row must be a positive number") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestWatchNoticesBeforeQuitAreWritten(t *testing.T) {
	ns := newNewsServer(t)
	cfg := writeConfig(t, ns.srv.URL, "")

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bad row then quit", ":open x\n:q\n", "row must be a positive number"},
		{"unknown command then quit", ":nope\n:q\n", "unknown command :nope"},
		{"long edit then end of input", strings.Repeat("a", 501) + "\n", "query too long; edit ignored"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, &env{}, tc.input, "--config", cfg, "watch")
			if err != nil {
				t.Fatalf("watch: %v", err)
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("output missing %q:\n%s", tc.want, out)
			}
		})
	}
}

func TestOpenValidatesURL(t *testing.T) {
	var opened string
	e := &env{opener: browser.OpenerFunc(func(u string) error {
		opened = u
		return nil
	})}
	if _, err := execute(t, e, "", "open", "https://example.com/a"); err != nil || opened != "https://example.com/a" {
		t.Fatalf("open: %v (opened %q)", err, opened)
	}
	if _, err := execute(t, e, "", "open", "file:///etc/passwd"); err == nil {
		t.Fatalf("expected non-http URL to be refused")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, &env{version: "1.2.3"}, "", "version")
	if err != nil || !strings.HasPrefix(out, "newsreader 1.2.3") {
		t.Fatalf("version = %q, %v", out, err)
	}
}

func TestRelayOncePrintsStats(t *testing.T) {
	ns := newNewsServer(t)

	var mu sync.Mutex
	hits := 0
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	dir := t.TempDir()
	sinksPath := filepath.Join(dir, "sinks.yaml")
	if err := os.WriteFile(sinksPath, []byte("sinks:\n  - name: hook\n    kind: http\n    http:\n      url: "+hook.URL+"\n"), 0o644); err != nil {
		t.Fatalf("write sinks: %v", err)
	}
	extra := fmt.Sprintf("sinks_file: %s\nstorage_type: bbolt\nbbolt_path: %s\n", sinksPath, filepath.Join(dir, "relay.db"))
	cfg := writeConfig(t, ns.srv.URL, extra)

	out, err := execute(t, &env{}, "", "--config", cfg, "relay", "--once")
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if !strings.Contains(out, `"relayed":2`) {
		t.Fatalf("unexpected stats %s", out)
	}

	out, err = execute(t, &env{}, "", "--config", cfg, "relay", "--once")
	if err != nil {
		t.Fatalf("second relay: %v", err)
	}
	if !strings.Contains(out, `"skipped":2`) {
		t.Fatalf("expected dedupe on the second pass, got %s", out)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 2 {
		t.Fatalf("hook hits = %d, want 2", hits)
	}
}
