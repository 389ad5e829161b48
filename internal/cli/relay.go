package cli

import (
	"encoding/json"

	"github.com/samvad-hq/samvad-news-reader/internal/app"
	"github.com/spf13/cobra"
)

func newRelayCommand(e *env) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Forward new top headlines to the sinks in sinks_file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := e.gateway(cmd)
			if err != nil {
				return err
			}
			relay, err := app.NewRelayFromConfig(cmd.Context(), e.cfg, gw, e.log)
			if err != nil {
				return err
			}
			if !once {
				return relay.Run(cmd.Context())
			}

			defer relay.Close()
			stats, err := relay.RunOnce(cmd.Context())
			if encErr := json.NewEncoder(cmd.OutOrStdout()).Encode(stats); encErr != nil && err == nil {
				err = encErr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and print its stats")
	return cmd
}
