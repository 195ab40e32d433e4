package push

import (
	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/cmd/cmdutil"
	"github.com/placelink/placelink/internal/osmapi"
	"github.com/placelink/placelink/pkg/constants"
)

func newOSMCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.PushFlags

	cmd := &cobra.Command{
		Use:   "osm",
		Short: "Add wikidata=<QID> tags to OSM relations",
		Long: `For every row, fetch the OSM relation and add a wikidata=<QID> tag,
keeping all other tags and members. All edits of one run go into a single
changeset that is closed when the run ends.

Authenticates with OSM_ACCESS_TOKEN, the token stored by 'placelink auth osm',
or OSM_USERNAME / OSM_PASSWORD. Previews need no credentials.`,
		Example: `  placelink push osm                           # preview matches.csv
  placelink push osm --commit --comment "Link Saxony municipalities"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := app.Credentials()
			client := osmapi.New(creds.OSM, creds.UserAgent)

			return execute(cmd, app, flags, session{
				target:  osmapi.NewTarget(client, flags.Comment),
				label:   "OpenStreetMap",
				require: creds.RequireOSMWrite,
				verify:  client.VerifyAuth,
			})
		},
	}

	flags = cmdutil.AddPushFlags(cmd, constants.DefaultOSMDelay)
	cmd.Flags().StringVar(&flags.Comment, "comment", osmapi.DefaultComment, "Changeset comment")

	return cmd
}
