// Package sweep runs reconciliation passes on a timer.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/forumsync/internal/forumsync"
)

// Runner performs a single reconciliation pass.
type Runner interface {
	Run(ctx context.Context) (forumsync.Report, error)
}

// Options controls the sweep loop.
type Options struct {
	Interval time.Duration
	// RunOnStart performs a pass before waiting for the first tick.
	RunOnStart bool
}

// Start runs passes every interval until the context is cancelled. Passes run
// on the calling goroutine, so a slow pass delays the next tick instead of
// overlapping it. It blocks until the context is cancelled.
func Start(ctx context.Context, runner Runner, opts Options) {
	if opts.RunOnStart {
		runOnce(ctx, runner)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, runner)
		}
	}
}

func runOnce(ctx context.Context, runner Runner) {
	if ctx.Err() != nil {
		return
	}
	if _, err := runner.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("forum sync pass failed")
	}
}
