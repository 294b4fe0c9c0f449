package presence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	permissionErr error
	startErr      error
	onChange      func(UserState)
	starts        int
	stops         int
}

func (detector *fakeDetector) RequestPermission(context.Context) error {
	return detector.permissionErr
}

func (detector *fakeDetector) Start(_ context.Context, onChange func(UserState)) error {
	if detector.startErr != nil {
		return detector.startErr
	}
	detector.starts++
	detector.onChange = onChange
	return nil
}

func (detector *fakeDetector) Stop() error {
	detector.stops++
	return nil
}

func TestGuardEnableRoutesSignals(t *testing.T) {
	detector := &fakeDetector{}
	var received []UserState
	guard := NewGuard(detector, func(state UserState) {
		received = append(received, state)
	})

	status, err := guard.Enable(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusEnabled, status)
	assert.True(t, guard.Active())

	detector.onChange(UserIdle)
	detector.onChange(UserLocked)
	assert.Equal(t, []UserState{UserIdle, UserLocked}, received)

	status, err = guard.Enable(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusEnabled, status)
	assert.Equal(t, 1, detector.starts)
}

func TestGuardDisable(t *testing.T) {
	detector := &fakeDetector{}
	guard := NewGuard(detector, nil)

	status, err := guard.Disable()
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, status)
	assert.Zero(t, detector.stops)

	_, err = guard.Enable(t.Context())
	require.NoError(t, err)

	status, err = guard.Disable()
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, status)
	assert.Equal(t, 1, detector.stops)
	assert.False(t, guard.Active())
}

func TestGuardDegradesOnUnsupported(t *testing.T) {
	guard := NewGuard(nil, nil)

	status, err := guard.Enable(t.Context())
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, StatusUnsupported, status)
	assert.False(t, guard.Active())
}

func TestGuardDegradesOnPermissionDenied(t *testing.T) {
	guard := NewGuard(&fakeDetector{permissionErr: ErrPermissionDenied}, nil)

	status, err := guard.Enable(t.Context())
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, StatusFailed, status)
	assert.False(t, guard.Active())
}

func TestGuardStartFailure(t *testing.T) {
	guard := NewGuard(&fakeDetector{startErr: errors.New("bus closed")}, nil)

	status, err := guard.Enable(t.Context())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.False(t, guard.Active())
}
