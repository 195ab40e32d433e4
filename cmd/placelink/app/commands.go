package app

import (
	"github.com/spf13/cobra"

	"github.com/placelink/placelink/cmd/placelink/cmd/auth"
	"github.com/placelink/placelink/cmd/placelink/cmd/match"
	"github.com/placelink/placelink/cmd/placelink/cmd/push"
)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(match.NewCommand(a))
	rootCmd.AddCommand(push.NewCommand(a))

	rootCmd.AddCommand(auth.NewCommand(a))

	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "management",
		Short:   "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("placelink %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
