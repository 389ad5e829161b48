package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-news-reader/internal/cli"
	"github.com/samvad-hq/samvad-news-reader/internal/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		logger.ErrorObj("newsreader exited with error", "error", err.Error())
		_ = logger.Close()
		fmt.Fprintf(os.Stderr, "newsreader: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer logger.Close()

	return cli.NewRootCommand(version).ExecuteContext(ctx)
}
