package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"podcast-search/pkg/config"
	"podcast-search/pkg/search"
	"podcast-search/pkg/setup"
)

var outputFormat string

// loaded is what a command needs to run a search. Logs go to stderr so they
// never mix with command output.
type loaded struct {
	service *search.Service
	config  *config.Config
	logger  *zerolog.Logger
	close   func()
}

// serviceLoader builds the search service. Tests replace it.
var serviceLoader = loadService

func loadService(ctx context.Context) (*loaded, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := setup.NewLogger(os.Stderr, cfg.LogLevel, "console")
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		return nil, fmt.Errorf("wiring dependencies: %w", err)
	}

	return &loaded{
		service: deps.Service,
		config:  cfg,
		logger:  &logger,
		close:   func() { _ = deps.Close() },
	}, nil
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "podcastsearch",
		Short: "Search podcast transcripts by meaning",
		Long: `Search podcast transcripts by meaning from the command line.

Uses the same embedding server and search store as the HTTP API.
Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table or json")

	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewEpisodesCmd())
	cmd.AddCommand(NewEmbedDebugCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
