package auth

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/cmd/cmdutil"
	"github.com/placelink/placelink/internal/oauth"
	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/logging"
)

func newOSMCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.AuthFlags

	cmd := &cobra.Command{
		Use:   "osm",
		Short: "Obtain an OpenStreetMap OAuth 2 token",
		Long: `Start a local callback server and walk through the OpenStreetMap OAuth 2
authorization code flow. Register an application on openstreetmap.org with
the write_api scope and the redirect URL printed below, then set
OSM_CLIENT_ID and OSM_CLIENT_SECRET.

The token is stored in --token-file and used by 'placelink push osm'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := app.Credentials()

			tokenFile := flags.TokenFile
			if tokenFile == "" {
				tokenFile = creds.OSM.TokenFile
			}

			srv, err := oauth.NewServer(oauth.Options{
				ClientID:     creds.OSM.ClientID,
				ClientSecret: creds.OSM.ClientSecret,
				Listen:       flags.Listen,
				RedirectURL:  flags.RedirectURL,
				TLSCert:      flags.TLSCert,
				TLSKey:       flags.TLSKey,
				TokenFile:    tokenFile,
				Logger:       logging.FromContext(cmd.Context()),
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.AuthFlowTimeout)
			defer cancel()

			fmt.Fprintf(cmd.ErrOrStderr(), "Open %s in a browser to authorize placelink.\n", srv.StartURL())
			if _, err := srv.Run(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Token saved to %s\n", tokenFile)
			return nil
		},
	}

	flags = cmdutil.AddAuthFlags(cmd)

	return cmd
}
