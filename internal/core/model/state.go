package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// StateKey identifies the persisted stopwatch record in every store.
const StateKey = "lapwatch-state-v1"

// MaxDurationMs is the largest millisecond count that still fits a time.Duration.
const MaxDurationMs = math.MaxInt64 / int64(time.Millisecond)

var (
	// ErrStateNotFound indicates that no record has been persisted yet.
	ErrStateNotFound = errors.New("stopwatch state not found")
	// ErrStateCorrupt indicates a persisted record that cannot be used.
	ErrStateCorrupt = errors.New("stopwatch state corrupt")
)

// State is the persisted stopwatch record.
type State struct {
	Running       bool    `yaml:"running" json:"running"`
	StartEpochMs  int64   `yaml:"startEpochMs" json:"startEpochMs"`
	AccumulatedMs int64   `yaml:"accumulatedMs" json:"accumulatedMs"`
	LapsMs        []int64 `yaml:"laps" json:"laps"`
	PauseOnLock   bool    `yaml:"pauseOnLock" json:"pauseOnLock"`
}

// DefaultState returns the first-run state: paused at zero with no laps.
func DefaultState() State {
	return State{LapsMs: []int64{}}
}

// Validate reports whether the record satisfies the stopwatch invariants.
func (state State) Validate() error {
	if state.AccumulatedMs < 0 {
		return fmt.Errorf("%w: negative accumulated duration %d", ErrStateCorrupt, state.AccumulatedMs)
	}
	if state.AccumulatedMs > MaxDurationMs {
		return fmt.Errorf("%w: accumulated duration %d out of range", ErrStateCorrupt, state.AccumulatedMs)
	}
	if state.Running && state.StartEpochMs <= 0 {
		return fmt.Errorf("%w: running without start epoch", ErrStateCorrupt)
	}
	if !state.Running && state.StartEpochMs != 0 {
		return fmt.Errorf("%w: start epoch set while paused", ErrStateCorrupt)
	}
	for index, lap := range state.LapsMs {
		if lap < 0 {
			return fmt.Errorf("%w: negative lap %d at index %d", ErrStateCorrupt, lap, index)
		}
		if lap > MaxDurationMs {
			return fmt.Errorf("%w: lap %d at index %d out of range", ErrStateCorrupt, lap, index)
		}
	}
	return nil
}

// Clone returns a deep copy with a non-nil lap slice.
func (state State) Clone() State {
	laps := make([]int64, len(state.LapsMs))
	copy(laps, state.LapsMs)
	state.LapsMs = laps
	return state
}
