package etl

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/apperr"
	"github.com/DjordjeVuckovic/movies-etl/internal/backoff"
	"github.com/DjordjeVuckovic/movies-etl/internal/state"
	"github.com/google/uuid"
)

const (
	DefaultExtractBatchSize = 100
	DefaultLoadBatchSize    = 1000
)

// DefaultStartDate is used when a pipeline has no checkpoint and no start date configured.
var DefaultStartDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Status is the pump state of a pipeline.
type Status int32

const (
	StatusIdle Status = iota
	StatusExtracting
	StatusDraining
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusExtracting:
		return "extracting"
	case StatusDraining:
		return "draining"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PipelineConfig holds the tunables of one pipeline.
type PipelineConfig struct {
	Name             string
	ExtractBatchSize int
	LoadBatchSize    int
	StartDate        time.Time
	ExtractBackoff   *backoff.Policy
	EnrichBackoff    *backoff.Policy
	LoadBackoff      *backoff.Policy
}

// DefaultPipelineConfig returns the settings used when nothing is configured.
func DefaultPipelineConfig(name string) PipelineConfig {
	return PipelineConfig{
		Name:             name,
		ExtractBatchSize: DefaultExtractBatchSize,
		LoadBatchSize:    DefaultLoadBatchSize,
		StartDate:        DefaultStartDate,
		ExtractBackoff:   backoff.NewPolicy(10 * time.Second),
		EnrichBackoff:    backoff.NewPolicy(time.Second),
		LoadBackoff:      backoff.NewPolicy(time.Second),
	}
}

type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	retry []backoff.Option
}

// WithRetryOptions passes options to every retried call, e.g. a fake timer in tests.
func WithRetryOptions(opts ...backoff.Option) PipelineOption {
	return func(o *pipelineOptions) {
		o.retry = append(o.retry, opts...)
	}
}

// Pipeline drives one entity kind from source to sink.
// Stages run one after another on the calling goroutine, so a page is fully
// enriched, transformed and buffered before the next one is pulled.
type Pipeline[R any, D Document] struct {
	config      PipelineConfig
	extractor   Extractor[R]
	transformer Transformer[R, D]
	loader      Loader[D]
	state       *state.State
	opts        pipelineOptions
	status      atomic.Int32
}

func NewPipeline[R any, D Document](
	config PipelineConfig,
	extractor Extractor[R],
	transformer Transformer[R, D],
	loader Loader[D],
	st *state.State,
	opts ...PipelineOption,
) *Pipeline[R, D] {
	defaults := DefaultPipelineConfig(config.Name)
	if config.ExtractBatchSize <= 0 {
		config.ExtractBatchSize = defaults.ExtractBatchSize
	}
	if config.LoadBatchSize <= 0 {
		config.LoadBatchSize = defaults.LoadBatchSize
	}
	if config.StartDate.IsZero() {
		config.StartDate = defaults.StartDate
	}
	if config.ExtractBackoff == nil {
		config.ExtractBackoff = defaults.ExtractBackoff
	}
	if config.EnrichBackoff == nil {
		config.EnrichBackoff = defaults.EnrichBackoff
	}
	if config.LoadBackoff == nil {
		config.LoadBackoff = defaults.LoadBackoff
	}

	p := &Pipeline[R, D]{
		config:      config,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		state:       st,
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

func (p *Pipeline[R, D]) Name() string {
	return p.config.Name
}

func (p *Pipeline[R, D]) Status() Status {
	return Status(p.status.Load())
}

// Checkpoints returns the persisted keys of this pipeline without its prefix.
func (p *Pipeline[R, D]) Checkpoints() (map[string]any, error) {
	return p.state.Snapshot()
}

func (p *Pipeline[R, D]) setStatus(s Status) {
	p.status.Store(int32(s))
}

// Pump runs one sweep: extract until the source has no more changes, then flush the tail.
// forcedStart, when set, overrides any stored checkpoint.
func (p *Pipeline[R, D]) Pump(ctx context.Context, forcedStart *time.Time) error {
	start := time.Now()
	p.setStatus(StatusExtracting)

	slog.Info("🛫 Starting pipeline sweep",
		"pipeline", p.config.Name,
		"extract_batch_size", p.config.ExtractBatchSize,
		"load_batch_size", p.config.LoadBatchSize,
	)

	cursor, baseline, err := p.startCursor(forcedStart)
	if err != nil {
		return p.fail(err)
	}
	if err := p.state.SaveExtractorCursor(cursor); err != nil {
		return p.fail(err)
	}
	// The next sweep resumes from loader.modified, so it must never be ahead of
	// documents this sweep has not loaded yet.
	if baseline {
		if err := p.state.SaveLoaderWatermark(cursor.Watermark); err != nil {
			return p.fail(err)
		}
	}

	buf := NewBuffer[D](p.config.LoadBatchSize, p.flush)
	pages, extracted := 0, 0

	for {
		changes, err := backoff.RetryValue(ctx, p.config.Name+".extract", p.config.ExtractBackoff,
			func(ctx context.Context) ([]Change, error) {
				return p.extractor.ListChanged(ctx, cursor.Watermark, p.config.ExtractBatchSize, cursor.Offset)
			}, p.opts.retry...)
		if err != nil {
			return p.fail(err)
		}

		slog.Debug("Changed ids extracted",
			"pipeline", p.config.Name,
			"watermark", cursor.Watermark,
			"offset", cursor.Offset,
			"limit", p.config.ExtractBatchSize,
			"count", len(changes),
		)
		if len(changes) == 0 {
			break
		}

		cursor = cursor.Advance(changes[len(changes)-1].Modified, len(changes))
		if err := p.state.SaveExtractorCursor(cursor); err != nil {
			return p.fail(err)
		}

		ids := make([]uuid.UUID, len(changes))
		for i, c := range changes {
			ids[i] = c.ID
		}

		rows, err := backoff.RetryValue(ctx, p.config.Name+".enrich", p.config.EnrichBackoff,
			func(ctx context.Context) ([]R, error) {
				return p.extractor.Fetch(ctx, ids)
			}, p.opts.retry...)
		if err != nil {
			return p.fail(err)
		}

		docs := p.transformer.Transform(rows)
		slog.Debug("Rows transformed",
			"pipeline", p.config.Name,
			"rows", len(rows),
			"documents", len(docs),
		)

		if err := buf.Append(ctx, docs...); err != nil {
			return p.fail(err)
		}

		pages++
		extracted += len(changes)
	}

	p.setStatus(StatusDraining)
	drainErr := buf.Drain(ctx)
	p.setStatus(StatusDone)

	if drainErr != nil {
		slog.Error("Tail flush failed", "pipeline", p.config.Name, "error", drainErr)
		drainErr = fmt.Errorf("pipeline %s: %w", p.config.Name, drainErr)
	}
	slog.Info("Pipeline sweep completed",
		"pipeline", p.config.Name,
		"pages", pages,
		"extracted", extracted,
		"cursor", cursor.String(),
		"duration", time.Since(start),
	)

	return drainErr
}

// startCursor picks where extraction begins: a forced date, then the loader watermark,
// then the stored extractor cursor, then the configured start date.
// baseline reports whether loader.modified has to be reset to the returned watermark,
// which is the case for a forced start and whenever no load was confirmed yet.
func (p *Pipeline[R, D]) startCursor(forcedStart *time.Time) (cursor state.Cursor, baseline bool, err error) {
	if forcedStart != nil {
		return state.At(*forcedStart), true, nil
	}

	loaded, ok, err := p.state.LoaderWatermark()
	if err != nil {
		return state.Cursor{}, false, err
	}
	if ok {
		return state.At(loaded), false, nil
	}

	cursor, ok, err = p.state.ExtractorCursor()
	if err != nil {
		return state.Cursor{}, false, err
	}
	if ok {
		return cursor, true, nil
	}

	return state.At(p.config.StartDate), true, nil
}

// flush loads one batch and moves the loader watermark on full success only.
func (p *Pipeline[R, D]) flush(ctx context.Context, batch []D) error {
	if len(batch) == 0 {
		return nil
	}

	report, err := backoff.RetryValue(ctx, p.config.Name+".load", p.config.LoadBackoff,
		func(ctx context.Context) (*LoadReport, error) {
			return p.loader.BulkUpsert(ctx, batch)
		}, p.opts.retry...)
	if err != nil {
		return err
	}

	if !report.OK() {
		for _, itemErr := range report.Errors {
			slog.Error("Document rejected by sink",
				"pipeline", p.config.Name,
				"id", itemErr.ID,
				"status", itemErr.Status,
				"type", itemErr.Type,
				"reason", itemErr.Reason,
			)
		}
		return apperr.NewPartialLoad(p.config.Name, report.Failed, report.Total)
	}

	latest := batch[0].ModifiedAt()
	for _, d := range batch[1:] {
		if m := d.ModifiedAt(); m.After(latest) {
			latest = m
		}
	}
	if err := p.state.SaveLoaderWatermark(latest); err != nil {
		return err
	}

	slog.Info("Batch loaded",
		"pipeline", p.config.Name,
		"count", len(batch),
		"loader_modified", latest,
	)
	return nil
}

func (p *Pipeline[R, D]) fail(err error) error {
	p.setStatus(StatusFailed)
	slog.Error("Pipeline sweep failed", "pipeline", p.config.Name, "error", err)
	return fmt.Errorf("pipeline %s: %w", p.config.Name, err)
}
