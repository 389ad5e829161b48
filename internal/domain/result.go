package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNetwork
	KindDecode
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrNetwork marks transport failures and unusable upstream statuses.
	ErrNetwork = errors.New("network error")
	// ErrDecode marks response bodies that do not match the expected shape.
	ErrDecode = errors.New("decode error")
	// ErrValidation marks requests rejected before any I/O.
	ErrValidation = errors.New("validation error")
)

// FetchError carries the kind, the failing operation and the underlying cause.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewFetchError builds a FetchError for op.
func NewFetchError(kind ErrorKind, op string, err error) *FetchError {
	return &FetchError{Kind: kind, Op: op, Err: err}
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.sentinel(), e.Err)
}

// Unwrap exposes both the sentinel for the kind and the wrapped cause.
func (e *FetchError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *FetchError) sentinel() error {
	switch e.Kind {
	case KindNetwork:
		return ErrNetwork
	case KindDecode:
		return ErrDecode
	case KindValidation:
		return ErrValidation
	default:
		return errors.New("unknown fetch error")
	}
}

// KindOf returns the ErrorKind for err, or KindNone when err is nil or unclassified.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrValidation):
		return KindValidation
	}
	return KindNone
}

// FetchResult is either a list of articles or a classified failure.
type FetchResult struct {
	articles []Article
	err      error
}

// Success wraps a decoded article list. A nil list is normalized to empty.
func Success(articles []Article) FetchResult {
	if articles == nil {
		articles = []Article{}
	}
	return FetchResult{articles: articles}
}

// Failure wraps a fetch error.
func Failure(err error) FetchResult {
	if err == nil {
		err = NewFetchError(KindNetwork, "fetch", errors.New("unspecified failure"))
	}
	return FetchResult{err: err}
}

// OK reports whether the result is a success.
func (r FetchResult) OK() bool { return r.err == nil }

// Articles returns the decoded list; nil for failures.
func (r FetchResult) Articles() []Article { return r.articles }

// Err returns the failure cause; nil for successes.
func (r FetchResult) Err() error { return r.err }

// Kind returns the failure classification.
func (r FetchResult) Kind() ErrorKind { return KindOf(r.err) }
