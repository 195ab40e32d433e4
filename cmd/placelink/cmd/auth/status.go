package auth

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/cmd/output"
	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/internal/osmapi"
	"github.com/placelink/placelink/internal/wikibase"
)

func newStatusCommand(app application.Application) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are configured",
		Long: `Display the configured credential and endpoint keys with secrets masked.

With --verify, each service with write credentials is asked to confirm them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := app.Credentials()

			formatter := output.NewFormatter(output.DetectFormat(app.OutputFormat()))
			if err := formatter.Format(cmd.OutOrStdout(), output.Credentials(creds.Status())); err != nil {
				return err
			}

			if !app.Quiet() {
				printWriteAccess(cmd.ErrOrStderr(), "wikidata", creds.Wikidata.CanWrite())
				printWriteAccess(cmd.ErrOrStderr(), "osm", creds.OSM.CanWrite())
			}

			if verify {
				return verifyAll(cmd.Context(), cmd.ErrOrStderr(), creds)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Check the write credentials against the services")

	return cmd
}

func printWriteAccess(w io.Writer, service string, ok bool) {
	state := "missing"
	if ok {
		state = "configured"
	}
	fmt.Fprintf(w, "%s write credentials: %s\n", service, state)
}

func verifyAll(ctx context.Context, w io.Writer, creds config.Credentials) error {
	var failed error

	check := func(service string, canWrite bool, verify func(context.Context) error) {
		if !canWrite {
			return
		}
		if err := verify(ctx); err != nil {
			fmt.Fprintf(w, "%s: %v\n", service, err)
			if failed == nil {
				failed = err
			}
			return
		}
		fmt.Fprintf(w, "%s: ok\n", service)
	}

	check(wikibase.ServiceName, creds.Wikidata.CanWrite(), wikibase.New(creds.Wikidata, creds.UserAgent).VerifyAuth)
	check(osmapi.ServiceName, creds.OSM.CanWrite(), osmapi.New(creds.OSM, creds.UserAgent).VerifyAuth)

	return failed
}
