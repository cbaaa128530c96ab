package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"podcast-search/pkg/aggregator"
	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
	"podcast-search/pkg/web"
)

var (
	queryLimit     int
	queryThreshold float64
)

func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search transcript scenes",
		Long: `Search transcript scenes semantically and print them grouped by episode.

Each scene shows its time range, similarity and a link that starts
playback at the scene.

Examples:
  podcastsearch query "タクシーの話"
  podcastsearch query --limit 20 --threshold 0.5 "おすすめのアニメ"
  podcastsearch query --format json "ディズニー"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum results to return (default from DEFAULT_LIMIT)")
	cmd.Flags().Float64Var(&queryThreshold, "threshold", 0, "Minimum similarity (default from DEFAULT_THRESHOLD)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := serviceLoader(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()
	service := app.service
	cfg := app.config

	defaults := service.Defaults()
	req := search.Request{
		Query:     strings.Join(args, " "),
		Limit:     defaults.Limit,
		Threshold: defaults.Threshold,
	}
	if cmd.Flags().Changed("limit") {
		req.Limit = queryLimit
	}
	if cmd.Flags().Changed("threshold") {
		req.Threshold = queryThreshold
	}

	resp, err := service.Search(cmd.Context(), req)
	if err != nil {
		if search.IsBadRequest(err) {
			return err
		}
		return fmt.Errorf("%s: %w", search.PublicMessage(err), err)
	}

	if outputFormat == "json" {
		return writeJSON(cmd, resp)
	}

	out := cmd.OutOrStdout()
	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "No scenes found for query: %s\n", resp.Meta.Query)
		return nil
	}

	videoHost := domain.DefaultVideoHost
	if cfg != nil && cfg.VideoHost != "" {
		videoHost = cfg.VideoHost
	}

	for _, group := range aggregator.GroupByEpisode(resp.Results) {
		fmt.Fprintf(out, "%s %s (%d)\n", web.Badge(group.EpisodeNumber), group.EpisodeTitle, len(group.Chunks))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range group.Chunks {
			fmt.Fprintf(w, "  %s-%s\t%s\t%s\t%s\n",
				domain.FormatTimestamp(c.StartTime),
				domain.FormatTimestamp(c.EndTime),
				web.FormatSimilarity(c.Similarity),
				c.VideoURL(videoHost),
				truncate(c.Text, 60))
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\nFound %d scene(s) in %dms (embedding %dms)\n",
		resp.Meta.ResultCount, resp.Meta.TotalTimeMs, resp.Meta.EmbeddingTimeMs)
	return nil
}
