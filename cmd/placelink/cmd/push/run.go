package push

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/cmd/cmdutil"
	"github.com/placelink/placelink/internal/cmd/output"
	"github.com/placelink/placelink/internal/journal"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
	"github.com/placelink/placelink/pkg/propagate"
	"github.com/placelink/placelink/pkg/save"
)

// session is what a push subcommand contributes to a run.
type session struct {
	target  propagate.Target
	label   string
	require func() error
	verify  func(ctx context.Context) error
}

type palette struct {
	commit, preview, ok, skip, warn, fail *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		commit:  color.New(color.FgRed, color.Bold),
		preview: color.New(color.FgCyan, color.Bold),
		ok:      color.New(color.FgGreen),
		skip:    color.New(color.FgHiBlack),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{p.commit, p.preview, p.ok, p.skip, p.warn, p.fail} {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) outcome(o propagate.Outcome) *color.Color {
	switch o {
	case propagate.OutcomeApplied, propagate.OutcomeWouldApply:
		return p.ok
	case propagate.OutcomeAlreadyLinked:
		return p.skip
	case propagate.OutcomeConflict, propagate.OutcomeNotFound:
		return p.warn
	default:
		return p.fail
	}
}

func execute(cmd *cobra.Command, app application.Application, flags *cmdutil.PushFlags, s session) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	colors := newPalette(app.NoColor())
	format := output.DetectFormat(app.OutputFormat())
	textOutput := format == output.FormatTable

	rows, rowErrs, err := save.ReadCSVFile(flags.CSV)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		logger.Warn().Int("line", re.Line).Err(re.Err).Msg("Skipping invalid row")
	}

	mode := propagate.ModePreview
	if flags.Commit {
		mode = propagate.ModeCommit

		if err := s.require(); err != nil {
			return err
		}
		if !flags.AutoApprove {
			question := fmt.Sprintf("Write %d rows to %s?", len(rows), s.label)
			if !confirm(cmd.InOrStdin(), stderr, question) {
				fmt.Fprintln(stderr, "Push cancelled")
				return nil
			}
		}
		if err := s.verify(ctx); err != nil {
			return errors.NewAuthenticationError(s.target.Name(), "verify", "credentials were rejected", err)
		}
	}

	if !app.Quiet() {
		if mode == propagate.ModeCommit {
			colors.commit.Fprintf(stderr, "COMMIT: writing %d rows to %s\n", len(rows), s.label)
		} else {
			colors.preview.Fprintf(stderr, "PREVIEW: nothing will be written to %s (use --commit)\n", s.label)
		}
	}

	opts := []propagate.Option{
		propagate.WithMode(mode),
		propagate.WithDelay(flags.Delay),
		propagate.WithLogger(logger),
	}

	if flags.Journal != "" {
		j, err := journal.Open(flags.Journal)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close journal")
			}
		}()
		opts = append(opts, propagate.WithJournal(j))
	}

	// outcome lines and the progress bar would interleave on one terminal
	progress := !app.Quiet() && output.IsTerminal(stderr) && (!textOutput || !output.IsTerminal(stdout))
	if progress {
		opts = append(opts, propagate.WithProgress(stderr))
	}
	if textOutput {
		opts = append(opts, propagate.WithItemHandler(func(item propagate.ItemResult) {
			printItem(stdout, colors, item)
		}))
	}

	runner, err := propagate.NewRunner(s.target, opts...)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx, rows)
	if summary == nil {
		return runErr
	}

	if err := printSummary(stdout, format, colors, summary); err != nil {
		return err
	}

	if flags.Report != "" {
		if err := summary.WriteReport(flags.Report); err != nil {
			return err
		}
		logger.Info().Str("file", flags.Report).Msg("Wrote run report")
	}

	return runErr
}

func printItem(w io.Writer, colors palette, item propagate.ItemResult) {
	outcome := string(item.Outcome)
	if item.FromJournal {
		outcome += " (journal)"
	}
	line := fmt.Sprintf("%s (%s) -> relation %d: ", item.Name, item.QID, item.OSMID)
	fmt.Fprint(w, line)
	colors.outcome(item.Outcome).Fprint(w, outcome)
	if item.Error != "" {
		fmt.Fprintf(w, ": %s", item.Error)
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, format output.Format, colors palette, summary *propagate.Summary) error {
	switch format {
	case output.FormatTable:
		fmt.Fprintln(w)
		if err := output.NewFormatter(format).Format(w, output.Summary(*summary)); err != nil {
			return err
		}
		colors.ok.Fprintln(w, summary.Line())
		return nil
	case output.FormatCSV:
		return output.NewFormatter(format).Format(w, output.Items(summary.Items))
	default:
		return output.NewFormatter(format).Format(w, summary)
	}
}
