package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"podcast-search/pkg/search"
	"podcast-search/pkg/worker"
)

var (
	batchWorkers   int
	batchLimit     int
	batchThreshold float64
)

func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Run many searches concurrently",
		Long: `Run one search per input line and write one JSON result per line.

Blank lines and lines starting with # are skipped. Use - to read from stdin.
Results are written in input order.

Examples:
  podcastsearch batch queries.txt
  podcastsearch batch --workers 8 --limit 5 queries.txt > results.jsonl
  cat queries.txt | podcastsearch batch -`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().IntVar(&batchWorkers, "workers", 4, "Concurrent searches")
	cmd.Flags().IntVar(&batchLimit, "limit", 0, "Maximum results per query (default from DEFAULT_LIMIT)")
	cmd.Flags().Float64Var(&batchThreshold, "threshold", 0, "Minimum similarity (default from DEFAULT_THRESHOLD)")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(batchWorkers, "workers"); err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	queries, err := worker.ReadQueries(in)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries in %s", args[0])
	}

	app, err := serviceLoader(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()
	service := app.service

	defaults := service.Defaults()
	reqs := make([]search.Request, len(queries))
	for i, q := range queries {
		reqs[i] = search.Request{Query: q, Limit: defaults.Limit, Threshold: defaults.Threshold}
		if cmd.Flags().Changed("limit") {
			reqs[i].Limit = batchLimit
		}
		if cmd.Flags().Changed("threshold") {
			reqs[i].Threshold = batchThreshold
		}
	}

	results, runErr := worker.NewManager(batchWorkers, service, app.logger).ProcessQueries(cmd.Context(), reqs)

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return runErr
}
