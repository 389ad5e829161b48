package cli

import (
	"fmt"

	"github.com/samvad-hq/samvad-news-reader/internal/browser"
	"github.com/spf13/cobra"
)

func newOpenCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open an article URL in the default browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := browser.Validate(args[0]); err != nil {
				return err
			}
			if err := e.opener.Open(args[0]); err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			return nil
		},
	}
}
