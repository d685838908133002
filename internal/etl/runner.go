package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pumper is a pipeline as seen by the Runner and the ops server.
type Pumper interface {
	Name() string
	Pump(ctx context.Context, forcedStart *time.Time) error
	Status() Status
	Checkpoints() (map[string]any, error)
}

// Runner sweeps a set of independent pipelines.
type Runner struct {
	pipelines []Pumper
}

func NewRunner(pipelines ...Pumper) *Runner {
	return &Runner{pipelines: pipelines}
}

func (r *Runner) Pipelines() []Pumper {
	return r.pipelines
}

// RunOnce pumps every pipeline concurrently. A failing pipeline does not stop the others;
// all failures are joined into the returned error.
func (r *Runner) RunOnce(ctx context.Context, forcedStart *time.Time) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, p := range r.pipelines {
		g.Go(func() error {
			if err := p.Pump(ctx, forcedStart); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Run sweeps until ctx is done, sleeping interval between sweeps.
// A sweep that already started is finished even if ctx is cancelled meanwhile.
// forcedStart only applies to the first sweep.
func (r *Runner) Run(ctx context.Context, interval time.Duration, forcedStart *time.Time) error {
	if interval <= 0 {
		return fmt.Errorf("invalid sweep interval %s", interval)
	}

	for sweep := 1; ; sweep++ {
		if ctx.Err() != nil {
			slog.Info("Runner stopped", "sweeps", sweep-1)
			return nil
		}

		if err := r.RunOnce(context.WithoutCancel(ctx), forcedStart); err != nil {
			slog.Error("Sweep finished with errors", "sweep", sweep, "error", err)
		} else {
			slog.Info("Sweep finished", "sweep", sweep)
		}
		forcedStart = nil

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Runner stopped", "sweeps", sweep)
			return nil
		case <-timer.C:
		}
	}
}
