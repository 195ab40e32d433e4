package propagate

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/placelink/placelink/internal/journal"
	"github.com/placelink/placelink/pkg/errors"
)

// Options controls a write-back run.
type Options struct {
	Mode     Mode             // Preview or commit
	Delay    time.Duration    // Minimum spacing between remote calls
	Journal  *journal.Journal // Resume ledger, nil disables it
	Logger   *zerolog.Logger  // Defaults to the context logger
	Progress io.Writer        // Progress bar destination, nil disables it
	OnItem   func(ItemResult) // Called after every row
}

// Option is a function that configures Options.
type Option func(*Options)

// Defaults returns preview mode without pacing or journal.
func Defaults() *Options {
	return &Options{Mode: ModePreview}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Mode != ModePreview && o.Mode != ModeCommit {
		return errors.NewValidationError("Mode", o.Mode, "must be preview or commit")
	}
	if o.Delay < 0 {
		return errors.NewValidationError("Delay", o.Delay, "delay must be non-negative")
	}
	return nil
}

// WithMode sets the run mode.
func WithMode(mode Mode) Option {
	return func(o *Options) { o.Mode = mode }
}

// WithCommit switches to commit mode when commit is true.
func WithCommit(commit bool) Option {
	return func(o *Options) {
		if commit {
			o.Mode = ModeCommit
		}
	}
}

// WithDelay sets the minimum delay between remote calls.
func WithDelay(d time.Duration) Option {
	return func(o *Options) { o.Delay = d }
}

// WithJournal enables resuming from j.
func WithJournal(j *journal.Journal) Option {
	return func(o *Options) { o.Journal = j }
}

// WithLogger sets the run logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(o *Options) { o.Progress = w }
}

// WithItemHandler registers a callback invoked after each row.
func WithItemHandler(fn func(ItemResult)) Option {
	return func(o *Options) { o.OnItem = fn }
}
