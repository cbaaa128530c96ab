package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"podcast-search/pkg/setup"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "podcastsearch %s\n", setup.Version)
		},
	}
}
