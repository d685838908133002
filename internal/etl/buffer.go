package etl

import "context"

type FlushFunc[D any] func(ctx context.Context, batch []D) error

// Buffer accumulates documents and hands the whole accumulator to flush once it
// holds at least batchSize items. It belongs to a single pump run.
type Buffer[D any] struct {
	batchSize int
	items     []D
	flush     FlushFunc[D]
}

func NewBuffer[D any](batchSize int, flush FlushFunc[D]) *Buffer[D] {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Buffer[D]{batchSize: batchSize, flush: flush}
}

// Append adds docs and flushes when the threshold is reached.
// The accumulator is cleared on every flush attempt, failed or not.
func (b *Buffer[D]) Append(ctx context.Context, docs ...D) error {
	b.items = append(b.items, docs...)
	if len(b.items) < b.batchSize {
		return nil
	}
	return b.flushAll(ctx)
}

// Drain flushes whatever is left below the threshold.
func (b *Buffer[D]) Drain(ctx context.Context) error {
	if len(b.items) == 0 {
		return nil
	}
	return b.flushAll(ctx)
}

func (b *Buffer[D]) Len() int {
	return len(b.items)
}

func (b *Buffer[D]) flushAll(ctx context.Context) error {
	batch := b.items
	b.items = nil
	return b.flush(ctx, batch)
}
