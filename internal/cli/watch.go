package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-reader/internal/app"
	"github.com/samvad-hq/samvad-news-reader/internal/dispatch"
	"github.com/samvad-hq/samvad-news-reader/internal/feed"
	"github.com/samvad-hq/samvad-news-reader/internal/search"
	"github.com/spf13/cobra"
)

const watchHelp = `Type to search; each line replaces the search field.
  (empty line)  clear the field
  :go           search now
  :top          reload top headlines
  :open N       open article N
  :img N        load article N's thumbnail
  :q            quit`

func newWatchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive session: search as you type",
		Long:  "Reads the search field from stdin, one line per edit.\n\n" + watchHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := e.gateway(cmd)
			if err != nil {
				return err
			}
			policy, err := search.ParseEmptyQueryPolicy(e.cfg.EmptyQueryPolicy)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			loop := dispatch.NewLoop()
			go func() { _ = loop.Run(ctx) }()

			images := feed.NewImageLoader(e.client, loop,
				feed.WithOGFallback(e.cfg.ImageOGFallback),
				feed.WithImageLogger(e.log),
			)
			reader, err := app.NewReader(gw, loop, images, e.opener, e.log, app.ReaderOptions{
				Debounce:         e.cfg.Debounce,
				EmptyQueryPolicy: policy,
				MaxQueryLength:   e.cfg.MaxQueryLength,
			})
			if err != nil {
				return err
			}
			defer reader.Close()

			s := &session{
				out:     cmd.OutOrStdout(),
				reader:  reader,
				loop:    loop,
				settled: make(chan struct{}, 1),
				wait:    e.cfg.HTTPTimeout + e.cfg.Debounce,
			}
			return s.run(ctx, cmd.InOrStdin())
		},
	}
}

// session drives a Reader from line-oriented input. Everything it prints
// goes through the loop so output never interleaves.
type session struct {
	out     io.Writer
	reader  *app.Reader
	loop    *dispatch.Loop
	settled chan struct{}
	wait    time.Duration
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	s.reader.OnUpdate(func(u app.Update) {
		switch u.Source {
		case app.SourceSearch:
			fmt.Fprintf(s.out, "\n== results for %q ==\n", u.Query)
		default:
			fmt.Fprintln(s.out, "\n== top headlines ==")
		}
		printRows(s.out, u.Snapshot.Rows)
		s.signal()
	})
	s.reader.OnError(func(source, query string, err error) {
		fmt.Fprintf(s.out, "! %s %q failed: %v\n", source, query, err)
		s.signal()
	})

	fmt.Fprintln(s.out, watchHelp)
	s.reader.LoadTopStories()
	s.await(ctx)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if quit := s.handle(ctx, line); quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// Input ended mid-typing: run what is pending so piped sessions see it.
	if s.reader.Submit() {
		s.await(ctx)
	}
	return nil
}

func (s *session) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		if !s.reader.AllowEdit(line) {
			s.print(ctx, "! query too long; edit ignored")
			return false
		}
		s.drain()
		s.reader.OnQueryChanged(line)
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":q", ":quit":
		return true
	case ":go":
		s.drain()
		if s.reader.Submit() {
			s.await(ctx)
		}
	case ":top":
		s.drain()
		s.reader.LoadTopStories()
		s.await(ctx)
	case ":open", ":img":
		n, err := rowArg(fields)
		if err != nil {
			s.print(ctx, "! "+err.Error())
			return false
		}
		if fields[0] == ":open" {
			s.onLoop(ctx, func() {
				if err := s.reader.Open(n); err != nil {
					fmt.Fprintf(s.out, "! cannot open article %d: %v\n", n+1, err)
				}
			})
			return false
		}
		s.loadImage(ctx, n)
	default:
		s.print(ctx, "! unknown command "+fields[0])
	}
	return false
}

func (s *session) loadImage(ctx context.Context, n int) {
	done := make(chan struct{})
	s.onLoop(ctx, func() {
		err := s.reader.LoadImage(n, func(data []byte, err error) {
			if err != nil {
				fmt.Fprintf(s.out, "! thumbnail %d: %v\n", n+1, err)
			} else {
				fmt.Fprintf(s.out, "thumbnail %d: %d bytes\n", n+1, len(data))
			}
			close(done)
		})
		if err != nil {
			fmt.Fprintf(s.out, "! thumbnail %d: %v\n", n+1, err)
			close(done)
		}
	})
	select {
	case <-done:
	case <-ctx.Done():
	case <-time.After(s.wait):
	}
}

func rowArg(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("usage: %s N", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("row must be a positive number")
	}
	return n - 1, nil
}

// print returns once msg is written on the loop.
func (s *session) print(ctx context.Context, msg string) {
	s.onLoop(ctx, func() { fmt.Fprintln(s.out, msg) })
}

func (s *session) onLoop(ctx context.Context, fn func()) {
	if err := s.loop.Do(ctx, fn); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(s.out, "! %v\n", err)
	}
}

func (s *session) signal() {
	select {
	case s.settled <- struct{}{}:
	default:
	}
}

// drain forgets settle signals from results nobody waited for.
func (s *session) drain() {
	select {
	case <-s.settled:
	default:
	}
}

// await blocks until a result set is applied or a fetch fails.
func (s *session) await(ctx context.Context) {
	select {
	case <-s.settled:
	case <-ctx.Done():
	case <-time.After(s.wait):
	}
}
