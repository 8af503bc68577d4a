// Package timer implements the focus-timer engine: a pure countdown store,
// the single-writer driver that ticks it against a wall-clock deadline, and
// the queue that hands completed intervals to a session sink.
package timer

import "github.com/hammamikhairi/focustrack/internal/domain"

// Store holds the canonical timer state. It performs no I/O and never
// reads the clock. It is not safe for concurrent use; the Engine owns it.
type Store struct {
	state domain.TimerState
}

// NewStore creates a store for mode with a fresh countdown of totalSeconds.
// Non-positive totals fall back to the default Focus duration.
func NewStore(mode domain.TimerMode, totalSeconds int) *Store {
	if totalSeconds <= 0 {
		totalSeconds = domain.DefaultSettings().FocusMinutes * 60
	}
	return &Store{state: domain.TimerState{
		Mode:             mode,
		TotalSeconds:     totalSeconds,
		RemainingSeconds: totalSeconds,
	}}
}

// State returns a copy of the current state.
func (s *Store) State() domain.TimerState {
	return s.state
}

// SetMode switches mode and always stops the clock. Remaining time is left
// as is; callers wanting a fresh countdown follow up with ResetTimer.
func (s *Store) SetMode(mode domain.TimerMode) {
	s.state.Mode = mode
	s.state.Running = false
}

// SetTotalDuration sets both total and remaining to seconds. Non-positive
// values are refused and false is returned.
func (s *Store) SetTotalDuration(seconds int) bool {
	if seconds <= 0 {
		return false
	}
	s.state.TotalSeconds = seconds
	s.state.RemainingSeconds = seconds
	return true
}

// SetRemaining writes the remaining seconds clamped to [0, total].
func (s *Store) SetRemaining(seconds int) {
	switch {
	case seconds < 0:
		seconds = 0
	case seconds > s.state.TotalSeconds:
		seconds = s.state.TotalSeconds
	}
	s.state.RemainingSeconds = seconds
}

// SetRunning toggles the running flag. Guarding against starting an
// exhausted countdown is the caller's job.
func (s *Store) SetRunning(running bool) {
	s.state.Running = running
}

// ResetTimer stops the clock and restores the full duration.
func (s *Store) ResetTimer() {
	s.state.Running = false
	s.state.RemainingSeconds = s.state.TotalSeconds
}
