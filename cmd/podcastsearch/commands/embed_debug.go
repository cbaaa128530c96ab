package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewEmbedDebugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed-debug <text>",
		Short: "Show the query embedding of a text",
		Long: `Embed a text the way searches do and print the first ten components
with min, max, mean and norm of the vector.

Examples:
  podcastsearch embed-debug "テスト"
  podcastsearch embed-debug --format json "hello"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEmbedDebug,
	}

	return cmd
}

func runEmbedDebug(cmd *cobra.Command, args []string) error {
	app, err := serviceLoader(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()
	service := app.service

	resp, err := service.Debug(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd, resp)
	}

	out := cmd.OutOrStdout()
	info := resp.Embedding
	fmt.Fprintf(out, "Query:     %s\n", resp.Query)
	fmt.Fprintf(out, "Dimension: %d\n", info.Dimension)
	fmt.Fprintf(out, "First 10:  %v\n", info.First10)
	fmt.Fprintf(out, "Min:       %.6f\n", info.Stats.Min)
	fmt.Fprintf(out, "Max:       %.6f\n", info.Stats.Max)
	fmt.Fprintf(out, "Mean:      %.6f\n", info.Stats.Mean)
	fmt.Fprintf(out, "Norm:      %.6f\n", info.Stats.Norm)
	fmt.Fprintf(out, "Time:      %dms\n", resp.EmbeddingTimeMs)
	return nil
}
