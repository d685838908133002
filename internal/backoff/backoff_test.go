package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer fires immediately and remembers every requested wait.
type instantTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	return t.c
}

func testPolicy() *Policy {
	return &Policy{StartSleep: 100 * time.Millisecond, Factor: 2, BorderSleep: time.Second}
}

func TestPolicy_Delays(t *testing.T) {
	delays := testPolicy().Delays()

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}, delays)
}

func TestRetry_AlwaysFailingGivesUpAfterFourRetries(t *testing.T) {
	timer := newInstantTimer()
	calls := 0
	cause := errors.New("connection refused")

	err := Retry(context.Background(), "test.op", testPolicy(), func(ctx context.Context) error {
		calls++
		return cause
	}, WithTimer(timer))

	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Len(t, timer.waits, 4)
	assert.True(t, errors.Is(err, apperr.ErrRetryExhausted))
	assert.True(t, errors.Is(err, cause))

	var re *apperr.RetryExhaustedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 5, re.Attempts)
	assert.Equal(t, "test.op", re.Operation)
}

func TestRetry_RecoversAfterTransientErrors(t *testing.T) {
	timer := newInstantTimer()
	var seen []error

	err := Retry(context.Background(), "test.op", testPolicy(), func(ctx context.Context) error {
		switch len(seen) {
		case 0:
			seen = append(seen, errors.New("key error"))
			return seen[0]
		case 1:
			seen = append(seen, errors.New("value error"))
			return seen[1]
		}
		return nil
	}, WithTimer(timer))

	require.NoError(t, err)
	assert.Len(t, seen, 2)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, timer.waits)
}

func TestRetry_PermanentErrorIsNotRetried(t *testing.T) {
	timer := newInstantTimer()
	calls := 0
	cause := apperr.NewPartialLoad("movies", 1, 2)

	err := Retry(context.Background(), "test.op", testPolicy(), func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	}, WithTimer(timer))

	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.waits)
	assert.True(t, errors.Is(err, apperr.ErrPartialLoad))
	assert.False(t, errors.Is(err, apperr.ErrRetryExhausted))
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, "test.op", testPolicy(), func(ctx context.Context) error {
		return errors.New("boom")
	}, WithTimer(newInstantTimer()))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, apperr.ErrRetryExhausted))
}

func TestRetryValue(t *testing.T) {
	calls := 0

	v, err := RetryValue(context.Background(), "test.value", testPolicy(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	}, WithTimer(newInstantTimer()))

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestPolicy_CloneIsIndependent(t *testing.T) {
	p := testPolicy()
	_ = p.NextBackOff()
	_ = p.NextBackOff()

	c := p.Clone()

	assert.Equal(t, 100*time.Millisecond, c.NextBackOff())
	assert.Equal(t, 400*time.Millisecond, p.NextBackOff())
}
