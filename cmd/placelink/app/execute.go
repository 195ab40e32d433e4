package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/output"
	"github.com/placelink/placelink/pkg/logging"
)

// Execute runs the placelink CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "placelink",
		Short:   "Link OpenStreetMap relations with Wikidata settlements",
		Version: a.version,
		Long: `placelink pairs OpenStreetMap settlement relations with Wikidata items
whose label equals the relation name and whose coordinates lie within a small
tolerance of the relation center.

The matches can then be written back: the OSM relation ID as property P402
on Wikidata, and a wikidata=<QID> tag on the OSM relation. Both push commands
preview by default and only write with --commit.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.placelink.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, json, yaml, csv")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("placelink {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	if cmd.Flags().Changed("config") {
		if err := a.config.ReadConfigFile(mustGetString(cmd, "config")); err != nil {
			return err
		}
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	if a.config.ConfigFile != "" {
		a.logger.Debug().Str("file", a.config.ConfigFile).Msg("Using config file")
	}
	return nil
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
