package etl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_FlushesWholeAccumulatorAtThreshold(t *testing.T) {
	var flushed [][]int
	buf := NewBuffer[int](3, func(_ context.Context, batch []int) error {
		flushed = append(flushed, batch)
		return nil
	})
	ctx := context.Background()

	require.NoError(t, buf.Append(ctx, 1))
	require.NoError(t, buf.Append(ctx, 2))
	assert.Empty(t, flushed)

	require.NoError(t, buf.Append(ctx, 3, 4))

	require.Len(t, flushed, 1)
	assert.Equal(t, []int{1, 2, 3, 4}, flushed[0])
	assert.Equal(t, 0, buf.Len())
}

func TestBuffer_Drain(t *testing.T) {
	var flushed [][]int
	buf := NewBuffer[int](10, func(_ context.Context, batch []int) error {
		flushed = append(flushed, batch)
		return nil
	})
	ctx := context.Background()

	require.NoError(t, buf.Drain(ctx))
	assert.Empty(t, flushed, "empty drain must not flush")

	require.NoError(t, buf.Append(ctx, 1, 2))
	require.NoError(t, buf.Drain(ctx))

	assert.Equal(t, [][]int{{1, 2}}, flushed)
	assert.Equal(t, 0, buf.Len())
}

func TestBuffer_ClearsEvenWhenFlushFails(t *testing.T) {
	buf := NewBuffer[int](2, func(context.Context, []int) error {
		return errBoom
	})

	err := buf.Append(context.Background(), 1, 2)

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, buf.Len())
}

func TestBuffer_NonPositiveBatchSizeFlushesEveryAppend(t *testing.T) {
	calls := 0
	buf := NewBuffer[int](0, func(context.Context, []int) error {
		calls++
		return nil
	})

	require.NoError(t, buf.Append(context.Background(), 1))
	require.NoError(t, buf.Append(context.Background(), 2))

	assert.Equal(t, 2, calls)
}
