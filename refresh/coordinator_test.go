package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront-client/refresh"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// blockingRefresh returns a refresh func that signals when it starts and
// blocks until release is closed.
func blockingRefresh(calls *atomic.Int32, started chan<- struct{}, release <-chan struct{}, result error) refresh.Func {
	return func(ctx context.Context) error {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return result
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

func TestCoordinator_SingleRefreshUnderConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	const n = 8
	c := refresh.New(0)
	var calls atomic.Int32
	started := make(chan struct{}, n)
	release := make(chan struct{})
	fn := blockingRefresh(&calls, started, release, nil)

	seen := c.Generation()
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Await(context.Background(), seen, fn)
		}()
	}

	<-started
	waitFor(t, func() bool { return c.Pending() == n-1 })
	require.True(t, c.InFlight())

	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), calls.Load())
	require.False(t, c.InFlight())
	require.Zero(t, c.Pending())
	require.Equal(t, uint64(1), c.Generation())
}

func TestCoordinator_FailureRejectsEveryWaiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	const n = 4
	c := refresh.New(0)
	refreshErr := errors.New("invalid refresh token")
	var calls atomic.Int32
	started := make(chan struct{}, n)
	release := make(chan struct{})
	fn := blockingRefresh(&calls, started, release, refreshErr)

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Await(context.Background(), 0, fn)
		}()
	}
	<-started
	waitFor(t, func() bool { return c.Pending() == n-1 })
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.ErrorIs(t, err, refreshErr)
	}
	require.Equal(t, int32(1), calls.Load())
}

func TestCoordinator_LateFailureAdoptsSettledOutcome(t *testing.T) {
	c := refresh.New(0)
	var calls atomic.Int32
	fn := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	seen := c.Generation()
	require.NoError(t, c.Await(context.Background(), seen, fn))

	// A request sent at the same generation whose 401 arrives only now.
	require.NoError(t, c.Await(context.Background(), seen, fn))
	require.Equal(t, int32(1), calls.Load())

	// A request sent after the refresh starts a fresh one.
	require.NoError(t, c.Await(context.Background(), c.Generation(), fn))
	require.Equal(t, int32(2), calls.Load())
}

func TestCoordinator_LateFailureAdoptsSettledError(t *testing.T) {
	c := refresh.New(0)
	refreshErr := errors.New("no refresh token")
	var calls atomic.Int32
	fn := func(context.Context) error {
		calls.Add(1)
		return refreshErr
	}

	require.ErrorIs(t, c.Await(context.Background(), 0, fn), refreshErr)
	require.ErrorIs(t, c.Await(context.Background(), 0, fn), refreshErr)
	require.Equal(t, int32(1), calls.Load())
}

func TestCoordinator_WaiterCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := refresh.New(0)
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	fn := blockingRefresh(&calls, started, release, nil)

	leaderDone := make(chan error, 1)
	go func() { leaderDone <- c.Await(context.Background(), 0, fn) }()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() { waiterDone <- c.Await(ctx, 0, fn) }()
	waitFor(t, func() bool { return c.Pending() == 1 })

	cancel()
	require.ErrorIs(t, <-waiterDone, context.Canceled)
	require.Zero(t, c.Pending())
	require.True(t, c.InFlight())

	close(release)
	require.NoError(t, <-leaderDone)
	require.Equal(t, int32(1), calls.Load())
}

func TestCoordinator_LeaderCancellationDoesNotAbortRefresh(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := refresh.New(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Await(ctx, 0, func(runCtx context.Context) error {
		return runCtx.Err()
	})
	require.NoError(t, err)
}

func TestCoordinator_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := refresh.New(10 * time.Millisecond)
	err := c.Await(context.Background(), 0, func(runCtx context.Context) error {
		<-runCtx.Done()
		return runCtx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, c.InFlight())
}

func TestCoordinator_QueuedCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := refresh.New(0)
	var calls, queued atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	fn := blockingRefresh(&calls, started, release, nil)

	done := make(chan error, 2)
	go func() { done <- c.AwaitNotify(context.Background(), 0, fn, func() { queued.Add(1) }) }()
	<-started
	go func() { done <- c.AwaitNotify(context.Background(), 0, fn, func() { queued.Add(1) }) }()
	waitFor(t, func() bool { return queued.Load() == 1 })

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	require.Equal(t, int32(1), queued.Load())
}

func TestCoordinator_PanicReleasesWaiters(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := refresh.New(0)
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(context.Context) error {
		close(started)
		<-release
		panic("boom")
	}

	go func() {
		defer func() { _ = recover() }()
		_ = c.Await(context.Background(), 0, fn)
	}()
	<-started

	waiter := make(chan error, 1)
	go func() { waiter <- c.Await(context.Background(), 0, fn) }()
	waitFor(t, func() bool { return c.Pending() == 1 })
	close(release)

	var pe *refresh.PanicError
	require.ErrorAs(t, <-waiter, &pe)
	require.False(t, c.InFlight())
}
