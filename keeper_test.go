package faucet_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/getoutreach/faucet"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"
)

// stateRecorder collects keeper state transitions
type stateRecorder struct {
	mu     sync.Mutex
	states []faucet.KeeperState
}

func (r *stateRecorder) record(s faucet.KeeperState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) seen(want faucet.KeeperState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.states, want)
}

func waitForKeeper(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("keeper did not stop in time")
		return nil
	}
}

func TestKeeperReestablishesAfterFailedPing(t *testing.T) {
	connector := succeedingConnector()
	boot := newStubBootstrapper(connector)
	recorder := &stateRecorder{}

	keeper := faucet.NewKeeper(boot, faucet.Options{Name: "metrics"}, &faucet.KeeperConfig{
		Interval:      3 * time.Millisecond,
		OnStateChange: recorder.record,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- keeper.Run(ctx) }()

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if keeper.State() == faucet.KeeperConnected {
			return poll.Success()
		}
		return poll.Continue("keeper is %s", keeper.State())
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(2*time.Millisecond))

	connector.pool(0).setPingErr(errors.New("server closed the connection unexpectedly"))

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if connector.callCount() >= 2 && keeper.State() == faucet.KeeperConnected {
			return poll.Success()
		}
		return poll.Continue("waiting for the reconnect, dials=%d state=%s",
			connector.callCount(), keeper.State())
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(2*time.Millisecond))

	assert.Assert(t, connector.pool(0).closed.Load(), "the lost pool should be released")
	assert.Assert(t, recorder.seen(faucet.KeeperReconnecting))

	conn, err := boot.Registry().Get("metrics")
	assert.NilError(t, err)
	assert.Assert(t, conn.IsOpen())

	cancel()
	assert.NilError(t, waitForKeeper(t, done))
	assert.Equal(t, keeper.State(), faucet.KeeperStopped)
	assert.Assert(t, recorder.seen(faucet.KeeperConnecting))
	assert.Assert(t, recorder.seen(faucet.KeeperStopped))
}

func TestKeeperStopsWhenHandleClosed(t *testing.T) {
	connector := succeedingConnector()
	boot := newStubBootstrapper(connector)

	keeper := faucet.NewKeeper(boot, faucet.Options{Name: "metrics"}, &faucet.KeeperConfig{
		Interval: time.Hour,
	})

	done := make(chan error, 1)
	go func() { done <- keeper.Run(context.Background()) }()

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if keeper.State() == faucet.KeeperConnected {
			return poll.Success()
		}
		return poll.Continue("keeper is %s", keeper.State())
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(2*time.Millisecond))

	conn, err := boot.Registry().Get("metrics")
	assert.NilError(t, err)
	assert.NilError(t, conn.Close())

	assert.NilError(t, waitForKeeper(t, done))
	assert.Equal(t, keeper.State(), faucet.KeeperStopped)
}

func TestKeeperStopsWhenHandleClosedDuringPing(t *testing.T) {
	connector := succeedingConnector()
	boot := newStubBootstrapper(connector)

	keeper := faucet.NewKeeper(boot, faucet.Options{Name: "metrics"}, &faucet.KeeperConfig{
		Interval: 2 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- keeper.Run(context.Background()) }()

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if keeper.State() == faucet.KeeperConnected {
			return poll.Success()
		}
		return poll.Continue("keeper is %s", keeper.State())
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(2*time.Millisecond))

	conn, err := boot.Registry().Get("metrics")
	assert.NilError(t, err)

	// close the handle while a ping is in flight, the failed ping must
	// read as a shutdown rather than an outage
	pool := connector.pool(0)
	pinging := make(chan struct{})
	released := make(chan struct{})
	pool.setPingHook(func() {
		close(pinging)
		<-released
	})
	<-pinging
	pool.setPingHook(nil)
	assert.NilError(t, conn.Close())
	pool.setPingErr(errors.New("terminating connection due to administrator command"))
	close(released)

	assert.NilError(t, waitForKeeper(t, done))
	assert.Equal(t, keeper.State(), faucet.KeeperStopped)
	assert.Equal(t, connector.callCount(), 1, "a handle closed elsewhere must not be redialed")
}

func TestKeeperReturnsEstablishError(t *testing.T) {
	boot := newStubBootstrapper(erroringConnector(errors.New("no pg_hba.conf entry")))

	keeper := faucet.NewKeeper(boot, faucet.Options{
		Name:          "metrics",
		RetryAttempts: 2,
		RetryDelay:    faucet.Duration(time.Millisecond),
	}, nil)

	err := keeper.Run(context.Background())
	assert.Assert(t, faucet.IsConnectionError(err))
	assert.Equal(t, keeper.State(), faucet.KeeperStopped)
}

func TestKeeperCancelDuringEstablishIsNotAnError(t *testing.T) {
	boot := newStubBootstrapper(erroringConnector(errors.New("connection refused")))

	keeper := faucet.NewKeeper(boot, faucet.Options{
		Name:       "metrics",
		RetryDelay: faucet.Duration(5 * time.Millisecond),
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	assert.NilError(t, keeper.Run(ctx))
	assert.Equal(t, keeper.State(), faucet.KeeperStopped)
}

func TestKeeperStateString(t *testing.T) {
	assert.Equal(t, faucet.KeeperIdle.String(), "idle")
	assert.Equal(t, faucet.KeeperConnecting.String(), "connecting")
	assert.Equal(t, faucet.KeeperConnected.String(), "connected")
	assert.Equal(t, faucet.KeeperReconnecting.String(), "reconnecting")
	assert.Equal(t, faucet.KeeperStopped.String(), "stopped")
	assert.Equal(t, faucet.KeeperState(99).String(), "unknown")
}
