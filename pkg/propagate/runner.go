package propagate

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/placelink/placelink/internal/journal"
	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/logging"
	"github.com/placelink/placelink/pkg/save"
)

// Runner applies rows to a Target one at a time.
type Runner struct {
	target  Target
	opts    *Options
	limiter *rate.Limiter
}

// NewRunner creates a runner for target.
func NewRunner(target Target, opts ...Option) (*Runner, error) {
	options := Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	limit := rate.Inf
	if options.Delay > 0 {
		limit = rate.Every(options.Delay)
	}

	return &Runner{
		target:  target,
		opts:    options,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Run processes rows in order. A failing row is logged and counted but does
// not stop the run. When ctx is cancelled the summary of the rows processed so
// far is returned together with the context error.
func (r *Runner) Run(ctx context.Context, rows []save.Row) (*Summary, error) {
	logger := r.opts.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithService(ctx, r.target.Name())

	summary := newSummary(r.target.Name(), r.opts.Mode, len(rows))
	defer summary.finish()

	bar := r.progressBar(len(rows))
	defer func() { _ = bar.Finish() }()

	if closer, ok := r.target.(Closer); ok {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
			defer cancel()
			if err := closer.Close(closeCtx); err != nil {
				logging.FromContext(ctx).Warn().Err(err).Msg("Failed to finish write-back session")
			}
		}()
	}

	logging.FromContext(ctx).Info().
		Str("mode", string(r.opts.Mode)).
		Int("rows", len(rows)).
		Msg("Starting write-back")

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		item := r.process(logging.WithItem(ctx, row.QID, row.OSMID), i, row)
		if item.Outcome == OutcomeFailed && ctx.Err() != nil {
			return summary, ctx.Err()
		}

		summary.add(item)
		_ = bar.Add(1)

		if r.opts.OnItem != nil {
			r.opts.OnItem(item)
		}
	}

	logging.FromContext(ctx).Info().
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("conflicts", summary.Conflicts).
		Int("not_found", summary.NotFound).
		Int("failed", summary.Failed).
		Msg("Write-back finished")

	return summary, nil
}

func (r *Runner) process(ctx context.Context, index int, row save.Row) ItemResult {
	log := logging.FromContext(ctx)
	item := newItem(index, row)

	if r.opts.Mode == ModeCommit && r.opts.Journal != nil {
		entry, found, err := r.opts.Journal.Lookup(r.target.Name(), row.QID, row.OSMID)
		if err != nil {
			log.Warn().Err(err).Msg("Journal lookup failed")
		} else if found && (Outcome(entry.Outcome) == OutcomeApplied || Outcome(entry.Outcome) == OutcomeAlreadyLinked) {
			log.Debug().Str("recorded", entry.Outcome).Msg("Skipping row recorded in journal")
			item.Outcome = OutcomeAlreadyLinked
			item.FromJournal = true
			return item
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		return item
	}

	log.Debug().Str("name", row.Name).Msg("Processing row")

	outcome, err := r.target.Apply(ctx, row, r.opts.Mode)
	if outcome == "" {
		outcome = OutcomeFailed
	}
	item.Outcome = outcome
	if err != nil {
		item.Error = err.Error()
	}

	logOutcome(log, item, err)

	if r.opts.Mode == ModeCommit && r.opts.Journal != nil && outcome != OutcomeFailed {
		entry := journal.Entry{
			Target:  r.target.Name(),
			QID:     row.QID,
			OSMID:   row.OSMID,
			Outcome: string(outcome),
		}
		if err := r.opts.Journal.Record(entry); err != nil {
			log.Warn().Err(err).Msg("Failed to record outcome in journal")
		}
	}

	return item
}

func logOutcome(log *zerolog.Logger, item ItemResult, err error) {
	switch item.Outcome {
	case OutcomeFailed:
		log.Error().Err(err).Msg("Row failed")
	case OutcomeConflict:
		log.Warn().Err(err).Msg("Existing link differs, not overwritten")
	case OutcomeNotFound:
		log.Warn().Msg("Target entity not found")
	case OutcomeAlreadyLinked:
		log.Info().Msg("Already linked")
	default:
		log.Info().Str("outcome", string(item.Outcome)).Msg("Row processed")
	}
}

func (r *Runner) progressBar(total int) *progressbar.ProgressBar {
	w := r.opts.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(r.target.Name()),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
