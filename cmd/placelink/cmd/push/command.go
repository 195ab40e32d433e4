// Package push provides the write-back commands.
package push

import (
	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
)

// NewCommand creates the push command with its wikidata and osm subcommands.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "push",
		GroupID: "core",
		Short:   "Write matches back to Wikidata or OpenStreetMap",
		Long: `Push reads the name,wd_qid,osm_id table written by 'placelink match' and
links each pair on one service. Items that are already linked are skipped and
items linked to something else are reported as conflicts; existing values are
never overwritten.

Without --commit nothing is written and the command reports what it would do.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newWikidataCommand(app))
	cmd.AddCommand(newOSMCommand(app))

	return cmd
}
