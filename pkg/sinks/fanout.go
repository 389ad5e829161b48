package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Fanout delivers each event to every sink it holds.
type Fanout struct {
	sinks []Sink
}

// NewFanout drops nil entries.
func NewFanout(sinks []Sink) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			cp = append(cp, s)
		}
	}
	return &Fanout{sinks: cp}
}

// Deliver returns how many sinks accepted evt and the joined errors of the rest.
func (f *Fanout) Deliver(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}
	var errs []error
	ok := 0
	for _, s := range f.sinks {
		if err := s.Deliver(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Kind(), s.Name(), err))
			continue
		}
		ok++
	}
	return ok, errors.Join(errs...)
}

// Size returns the number of sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Names lists sinks as kind:name, for logging.
func (f *Fanout) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		out = append(out, s.Kind()+":"+s.Name())
	}
	return out
}

// Close releases sinks that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close sink %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
