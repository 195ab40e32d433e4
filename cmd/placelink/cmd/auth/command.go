// Package auth provides credential management commands.
package auth

import (
	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
)

// NewCommand creates the auth command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: "management",
		Short:   "Manage Wikidata and OpenStreetMap credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newOSMCommand(app))
	cmd.AddCommand(newStatusCommand(app))

	return cmd
}
