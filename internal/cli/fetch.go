package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newTopCommand(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the top headlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := e.gateway(cmd)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), gw.TopStories(cmd.Context()), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print articles as JSON")
	return cmd
}

func newSearchCommand(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search articles once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := e.gateway(cmd)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			return printResult(cmd.OutOrStdout(), gw.SearchArticles(cmd.Context(), query), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print articles as JSON")
	return cmd
}
