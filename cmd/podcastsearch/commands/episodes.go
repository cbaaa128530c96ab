package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
	"podcast-search/pkg/web"
)

func NewEpisodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episodes [episode-id]",
		Short: "List transcribed episodes",
		Long: `List transcribed episodes ordered by episode number, or show one episode.

Examples:
  podcastsearch episodes
  podcastsearch episodes dQw4w9WgXcQ
  podcastsearch episodes --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEpisodes,
	}

	return cmd
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	app, err := serviceLoader(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()
	service := app.service

	var episodes []domain.Episode
	if len(args) == 1 {
		ep, err := service.GetEpisode(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting episode: %w", err)
		}
		episodes = []domain.Episode{*ep}
	} else {
		episodes, err = service.ListEpisodes(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", search.PublicMessage(err), err)
		}
	}

	if outputFormat == "json" {
		if len(args) == 1 {
			return writeJSON(cmd, episodes[0])
		}
		return writeJSON(cmd, episodes)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "EP\tID\tUPLOADED\tLENGTH\tTITLE\n")
	fmt.Fprintf(w, "--\t--\t--------\t------\t-----\n")
	for _, ep := range episodes {
		uploaded := "-"
		if ep.UploadDate != nil {
			uploaded = *ep.UploadDate
		}
		length := "-"
		if ep.DurationSeconds != nil {
			length = domain.FormatTimestamp(*ep.DurationSeconds)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", web.Badge(ep.EpisodeNumber), ep.ID, uploaded, length, truncate(ep.Title, 50))
	}
	return w.Flush()
}
