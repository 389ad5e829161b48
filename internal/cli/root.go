// Package cli is the terminal host for the headline reader.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-news-reader/internal/browser"
	"github.com/samvad-hq/samvad-news-reader/internal/config"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
	"github.com/samvad-hq/samvad-news-reader/internal/newsapi"
	"github.com/samvad-hq/samvad-news-reader/pkg/httpclient"
	"github.com/spf13/cobra"
)

// env carries what every subcommand shares.
type env struct {
	configPath string
	logLevel   string
	version    string

	opener browser.Opener
	// logTo overrides where logs go; nil means the command's stderr.
	logTo io.Writer

	cfg    *config.Config
	log    logger.Logger
	client *httpclient.RestyClient
}

// NewRootCommand builds the newsreader command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&env{version: version, opener: browser.System})
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "newsreader",
		Short: "Browse top headlines and search news from the terminal",
		Long: `newsreader shows the current top headlines and lets you search articles
as you type. Searches are debounced: only the text that stays unchanged for
the configured quiet period is sent upstream.

Example usage:
  newsreader top                 # Print today's top headlines
  newsreader search golang       # One-shot search
  newsreader watch               # Interactive search session
  newsreader relay               # Forward new headlines to configured sinks`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (YAML, JSON or TOML)")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newTopCommand(e),
		newSearchCommand(e),
		newWatchCommand(e),
		newOpenCommand(e),
		newRelayCommand(e),
		newVersionCommand(e),
	)
	return root
}

// setup loads configuration and starts logging. Logs go to stderr so stdout
// stays readable.
func (e *env) setup(cmd *cobra.Command) error {
	if e.cfg != nil {
		return nil
	}
	cfg, err := config.Load(e.configPath)
	if errors.Is(err, config.ErrMissingAPIKey) {
		return fmt.Errorf("%w: set API_KEY in the environment, configs/.env or the config file", err)
	}
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}

	w := e.logTo
	if w == nil {
		w = cmd.ErrOrStderr()
	}
	sugar, err := logger.InitWriter(cfg, w)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	e.cfg = cfg
	e.log = logger.New(sugar)
	e.client = httpclient.NewRestyClientWithOptions(httpclient.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	e.log.DebugObj("configuration loaded", "config", cfg.Redacted())
	return nil
}

func (e *env) gateway(cmd *cobra.Command) (*newsapi.Gateway, error) {
	if err := e.setup(cmd); err != nil {
		return nil, err
	}
	return newsapi.New(newsapi.OptionsFromConfig(e.cfg), e.client, e.log)
}
