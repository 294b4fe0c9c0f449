package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lapwatch/internal/core/model"
	"lapwatch/internal/core/presence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdle struct {
	mu      sync.Mutex
	idleFor time.Duration
	err     error
}

func (idle *fakeIdle) IdleDuration() (time.Duration, error) {
	idle.mu.Lock()
	defer idle.mu.Unlock()
	return idle.idleFor, idle.err
}

func (idle *fakeIdle) set(idleFor time.Duration) {
	idle.mu.Lock()
	defer idle.mu.Unlock()
	idle.idleFor = idleFor
}

type fakeLock struct {
	probeErr error
	watchErr error
	onChange func(bool)
	ctx      context.Context
}

func (lock *fakeLock) Probe(context.Context) error {
	return lock.probeErr
}

func (lock *fakeLock) Watch(ctx context.Context, onChange func(bool)) error {
	if lock.watchErr != nil {
		return lock.watchErr
	}
	lock.ctx = ctx
	lock.onChange = onChange
	return nil
}

func testPresenceConfig() model.PresenceConfig {
	return model.PresenceConfig{IdleThreshold: time.Minute, CheckInterval: time.Hour}
}

func TestPresenceDetectorClassifiesStates(t *testing.T) {
	idle := &fakeIdle{}
	lock := &fakeLock{}
	detector := newPresenceDetector(testPresenceConfig(), idle, lock)

	var got []presence.UserState
	require.NoError(t, detector.RequestPermission(t.Context()))
	require.NoError(t, detector.Start(t.Context(), func(state presence.UserState) {
		got = append(got, state)
	}))
	defer func() { _ = detector.Stop() }()

	idle.set(30 * time.Second)
	detector.pollIdle()
	assert.Empty(t, got)

	idle.set(2 * time.Minute)
	detector.pollIdle()
	lock.onChange(true)
	lock.onChange(true)
	idle.set(0)
	detector.pollIdle()
	lock.onChange(false)

	assert.Equal(t, []presence.UserState{
		presence.UserIdle,
		presence.UserLocked,
		presence.UserActive,
	}, got)
}

func TestPresenceDetectorLockOnly(t *testing.T) {
	lock := &fakeLock{}
	detector := newPresenceDetector(testPresenceConfig(), &fakeIdle{err: presence.ErrUnsupported}, lock)

	var got []presence.UserState
	require.NoError(t, detector.RequestPermission(t.Context()))
	require.NoError(t, detector.Start(t.Context(), func(state presence.UserState) {
		got = append(got, state)
	}))

	lock.onChange(true)
	assert.Equal(t, []presence.UserState{presence.UserLocked}, got)
	assert.Nil(t, detector.scheduler)

	require.NoError(t, detector.Stop())
	assert.Error(t, lock.ctx.Err())
	lock.onChange(false)
	assert.Len(t, got, 1)
}

func TestPresenceDetectorIdleOnly(t *testing.T) {
	detector := newPresenceDetector(testPresenceConfig(), &fakeIdle{}, nil)

	require.NoError(t, detector.RequestPermission(t.Context()))
	require.NoError(t, detector.Start(t.Context(), func(presence.UserState) {}))
	assert.NotNil(t, detector.scheduler)
	require.NoError(t, detector.Stop())
	assert.Nil(t, detector.scheduler)
}

type blockingIdle struct {
	calls   int
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
}

// IdleDuration blocks every call after the first until release is closed.
func (idle *blockingIdle) IdleDuration() (time.Duration, error) {
	idle.mu.Lock()
	idle.calls++
	first := idle.calls == 1
	second := idle.calls == 2
	idle.mu.Unlock()
	if first {
		return 0, nil
	}
	if second {
		close(idle.entered)
	}
	<-idle.release
	return 2 * time.Minute, nil
}

func TestPresenceDetectorStopDoesNotWaitOnInFlightPoll(t *testing.T) {
	idle := &blockingIdle{entered: make(chan struct{}), release: make(chan struct{})}
	config := model.PresenceConfig{IdleThreshold: time.Minute, CheckInterval: 10 * time.Millisecond}
	detector := newPresenceDetector(config, idle, nil)

	require.NoError(t, detector.RequestPermission(t.Context()))
	require.NoError(t, detector.Start(t.Context(), func(presence.UserState) {}))

	select {
	case <-idle.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("idle poll never ran")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- detector.Stop() }()
	time.Sleep(50 * time.Millisecond)
	close(idle.release)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked behind the running idle poll")
	}
	assert.Nil(t, detector.scheduler)
}

func TestPresenceDetectorPermissionErrors(t *testing.T) {
	tests := []struct {
		name string
		idle IdleProvider
		lock lockSource
		want error
	}{
		{
			name: "nothing available",
			idle: &fakeIdle{err: presence.ErrUnsupported},
			want: presence.ErrUnsupported,
		},
		{
			name: "lock denied",
			idle: &fakeIdle{err: presence.ErrUnsupported},
			lock: &fakeLock{probeErr: fmt.Errorf("%w: access denied", presence.ErrPermissionDenied)},
			want: presence.ErrPermissionDenied,
		},
		{
			name: "both unsupported",
			idle: &fakeIdle{err: fmt.Errorf("%w: wayland", presence.ErrUnsupported)},
			lock: &fakeLock{probeErr: fmt.Errorf("%w: no bus", presence.ErrUnsupported)},
			want: presence.ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := newPresenceDetector(testPresenceConfig(), tt.idle, tt.lock)

			require.ErrorIs(t, detector.RequestPermission(t.Context()), tt.want)
			require.ErrorIs(t, detector.Start(t.Context(), nil), presence.ErrUnsupported)
		})
	}
}

func TestPresenceDetectorWatchFailure(t *testing.T) {
	detector := newPresenceDetector(testPresenceConfig(), nil, &fakeLock{watchErr: errors.New("bus gone")})

	require.NoError(t, detector.RequestPermission(t.Context()))
	err := detector.Start(t.Context(), func(presence.UserState) {})
	require.Error(t, err)
	require.NoError(t, detector.Stop())
}

func TestPresenceDetectorDrivesGuard(t *testing.T) {
	lock := &fakeLock{}
	detector := newPresenceDetector(testPresenceConfig(), nil, lock)
	var got []presence.UserState
	guard := presence.NewGuard(detector, func(state presence.UserState) {
		got = append(got, state)
	})

	status, err := guard.Enable(t.Context())
	require.NoError(t, err)
	assert.Equal(t, presence.StatusEnabled, status)

	lock.onChange(true)
	assert.Equal(t, []presence.UserState{presence.UserLocked}, got)

	status, err = guard.Disable()
	require.NoError(t, err)
	assert.Equal(t, presence.StatusDisabled, status)
}
