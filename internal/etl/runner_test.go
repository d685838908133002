package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunOnceIsolatesFailures(t *testing.T) {
	failing := &fakePumper{name: "genres", err: errBoom}
	healthy := &fakePumper{name: "movies"}
	forced := t0

	err := NewRunner(failing, healthy).RunOnce(context.Background(), &forced)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 1, failing.calls())
	assert.Equal(t, 1, healthy.calls())
	assert.Equal(t, &forced, healthy.forced[0])
}

func TestRunner_RunOnceWithoutPipelines(t *testing.T) {
	assert.NoError(t, NewRunner().RunOnce(context.Background(), nil))
}

func TestRunner_RunFinishesSweepInFlightOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePumper{name: "movies"}
	p.onPump = func(call int) {
		if call == 2 {
			cancel()
		}
	}
	forced := t0

	err := NewRunner(p).Run(ctx, time.Millisecond, &forced)

	require.NoError(t, err)
	require.Equal(t, 2, p.calls())
	assert.Equal(t, &forced, p.forced[0])
	assert.Nil(t, p.forced[1], "forced start applies to the first sweep only")
	assert.NoError(t, p.ctxErr[1], "a sweep in flight must not observe cancellation")
}

func TestRunner_RunKeepsGoingAfterFailedSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePumper{name: "persons", err: errBoom}
	p.onPump = func(call int) {
		if call == 3 {
			cancel()
		}
	}

	err := NewRunner(p).Run(ctx, time.Millisecond, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, p.calls())
}

func TestRunner_RunRejectsNonPositiveInterval(t *testing.T) {
	err := NewRunner().Run(context.Background(), 0, nil)

	assert.Error(t, err)
}
