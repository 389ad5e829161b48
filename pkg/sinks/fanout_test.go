package sinks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/domain"
)

type stubSink struct {
	name   string
	err    error
	events []Event
	closed bool
}

func (s *stubSink) Name() string { return s.name }
func (s *stubSink) Kind() string { return "stub" }
func (s *stubSink) Deliver(_ context.Context, evt Event) error {
	s.events = append(s.events, evt)
	return s.err
}
func (s *stubSink) Close() error {
	s.closed = true
	return nil
}

func TestFanoutDeliverAggregatesErrors(t *testing.T) {
	boom := errors.New("boom")
	ok, bad := &stubSink{name: "ok"}, &stubSink{name: "bad", err: boom}
	f := NewFanout([]Sink{ok, nil, bad})
	if f.Size() != 2 {
		t.Fatalf("Size = %d", f.Size())
	}

	n, err := f.Deliver(context.Background(), Event{ID: "e1"})
	if n != 1 {
		t.Fatalf("expected 1 success, got %d", n)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}
	if len(ok.events) != 1 || len(bad.events) != 1 {
		t.Fatalf("every sink must see the event")
	}

	if err := f.Close(); err != nil || !ok.closed || !bad.closed {
		t.Fatalf("Close did not reach sinks: %v", err)
	}
}

func TestBuildAllUsesRegistry(t *testing.T) {
	reg := NewRegistry()
	built := 0
	reg.Register("stub", func(_ context.Context, cfg Config, _ Logger) (Sink, error) {
		built++
		return &stubSink{name: cfg.Name}, nil
	})

	sinks, err := BuildAll(context.Background(), reg, []Config{{Name: "a", Kind: "STUB"}, {Name: "b", Kind: "stub"}}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 2 || built != 2 || sinks[1].Name() != "b" {
		t.Fatalf("unexpected sinks %#v", sinks)
	}

	if _, err := BuildAll(context.Background(), reg, []Config{{Name: "c", Kind: "kafka"}}, nil); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestDefaultRegistryBuildsHTTPSink(t *testing.T) {
	sinks, err := BuildAll(context.Background(), DefaultRegistry(), []Config{
		{Name: "hook", Kind: KindHTTP, HTTP: &HTTPConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if sinks[0].Kind() != KindHTTP {
		t.Fatalf("Kind = %s", sinks[0].Kind())
	}
}

func TestNewEventCarriesArticleID(t *testing.T) {
	a := domain.Article{Title: "t", URL: "https://example.com/x", Source: "Wire"}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	evt := NewEvent("us", a, at)
	if evt.ID != a.ID() || evt.RelayedAt.Location() != time.UTC {
		t.Fatalf("unexpected event %#v", evt)
	}
	attrs := evt.attributes()
	if attrs["article_id"] != a.ID() || attrs["country"] != "us" || attrs["source"] != "Wire" {
		t.Fatalf("attributes = %#v", attrs)
	}
}
