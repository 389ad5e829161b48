package domain

import (
	"errors"
	"io"
	"testing"
)

func TestFetchErrorMatchesSentinelAndCause(t *testing.T) {
	err := NewFetchError(KindNetwork, "top headlines", io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected errors.Is(err, ErrNetwork)")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected cause to be reachable through errors.Is")
	}
	if errors.Is(err, ErrDecode) {
		t.Fatalf("network error must not match ErrDecode")
	}
	if got := KindOf(err); got != KindNetwork {
		t.Fatalf("KindOf = %v, want network", got)
	}
}

func TestKindOfWrappedSentinel(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrValidation)
	if got := KindOf(wrapped); got != KindValidation {
		t.Fatalf("KindOf = %v, want validation", got)
	}
	if got := KindOf(nil); got != KindNone {
		t.Fatalf("KindOf(nil) = %v, want none", got)
	}
}

func TestFetchResultAccessors(t *testing.T) {
	ok := Success(nil)
	if !ok.OK() || ok.Err() != nil {
		t.Fatalf("expected success, got err=%v", ok.Err())
	}
	if ok.Articles() == nil || len(ok.Articles()) != 0 {
		t.Fatalf("expected empty non-nil article list, got %#v", ok.Articles())
	}
	if ok.Kind() != KindNone {
		t.Fatalf("success kind = %v", ok.Kind())
	}

	fail := Failure(NewFetchError(KindDecode, "search", errors.New("bad json")))
	if fail.OK() {
		t.Fatalf("expected failure")
	}
	if fail.Articles() != nil {
		t.Fatalf("failure must not carry articles")
	}
	if fail.Kind() != KindDecode {
		t.Fatalf("failure kind = %v, want decode", fail.Kind())
	}
	if fail.Err().Error() != "search: decode error: bad json" {
		t.Fatalf("unexpected message %q", fail.Err().Error())
	}
}

func TestArticleOptionalFields(t *testing.T) {
	a := Article{Title: "t"}
	if a.HasURL() || a.HasImage() {
		t.Fatalf("expected optional fields to be absent")
	}
	a.URL = "https://example.com/a"
	a.ImageURL = "https://example.com/a.png"
	if !a.HasURL() || !a.HasImage() {
		t.Fatalf("expected optional fields to be present")
	}
}
