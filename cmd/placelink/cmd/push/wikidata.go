package push

import (
	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/cmd/cmdutil"
	"github.com/placelink/placelink/internal/wikibase"
	"github.com/placelink/placelink/pkg/constants"
)

func newWikidataCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.PushFlags

	cmd := &cobra.Command{
		Use:   "wikidata",
		Short: "Add OSM relation IDs (P402) to Wikidata items",
		Long: `For every row, add the OSM relation ID as property P402 to the Wikidata
item, with a reference "imported from Wikimedia project: OpenStreetMap".

Authenticates with WIKIDATA_ACCESS_TOKEN (OAuth 2) or with a bot password
(WIKIDATA_USERNAME / WIKIDATA_PASSWORD). Previews need no credentials.`,
		Example: `  placelink push wikidata                      # preview matches.csv
  placelink push wikidata --commit             # write, after confirmation
  placelink push wikidata --commit -y --journal .placelink.db --report run.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := app.Credentials()
			client := wikibase.New(creds.Wikidata, creds.UserAgent)

			return execute(cmd, app, flags, session{
				target:  wikibase.NewTarget(client),
				label:   "Wikidata",
				require: creds.RequireWikidataWrite,
				verify:  client.VerifyAuth,
			})
		},
	}

	flags = cmdutil.AddPushFlags(cmd, constants.DefaultWikidataDelay)

	return cmd
}
