// Package domain defines the core types and interfaces for the focus tracker.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimerMode selects which countdown is active.
type TimerMode int

const (
	ModeFocus TimerMode = iota
	ModeShortBreak
	ModeLongBreak
)

// String returns the snake_case name used in files, the database and the API.
func (m TimerMode) String() string {
	switch m {
	case ModeFocus:
		return "focus"
	case ModeShortBreak:
		return "short_break"
	case ModeLongBreak:
		return "long_break"
	default:
		return "unknown"
	}
}

// Label returns a human-readable mode name.
func (m TimerMode) Label() string {
	switch m {
	case ModeFocus:
		return "Focus"
	case ModeShortBreak:
		return "Short break"
	case ModeLongBreak:
		return "Long break"
	default:
		return "Unknown"
	}
}

// IsBreak reports whether the mode is one of the break modes.
func (m TimerMode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

// Valid reports whether m is a known mode.
func (m TimerMode) Valid() bool {
	return m >= ModeFocus && m <= ModeLongBreak
}

// modeNames maps accepted spellings to modes.
var modeNames = map[string]TimerMode{
	"focus":       ModeFocus,
	"work":        ModeFocus,
	"pomodoro":    ModeFocus,
	"short_break": ModeShortBreak,
	"shortbreak":  ModeShortBreak,
	"short":       ModeShortBreak,
	"break":       ModeShortBreak,
	"long_break":  ModeLongBreak,
	"longbreak":   ModeLongBreak,
	"long":        ModeLongBreak,
}

// ParseMode converts a mode name (case-insensitive, '-' or '_') to a TimerMode.
func ParseMode(name string) (TimerMode, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if m, ok := modeNames[key]; ok {
		return m, nil
	}
	return ModeFocus, fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

// MarshalText implements encoding.TextMarshaler.
func (m TimerMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *TimerMode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// TimerState is the canonical countdown record.
// Invariant: 0 <= RemainingSeconds <= TotalSeconds.
type TimerState struct {
	Mode             TimerMode `json:"mode"`
	TotalSeconds     int       `json:"totalSeconds"`
	RemainingSeconds int       `json:"remainingSeconds"`
	Running          bool      `json:"running"`
}

// Fresh reports whether the timer is idle and untouched for its mode.
func (s TimerState) Fresh() bool {
	return !s.Running && s.RemainingSeconds == s.TotalSeconds
}

// Snapshot is what observers of the timer receive.
type Snapshot struct {
	State          TimerState `json:"state"`
	Tag            string     `json:"tag,omitempty"`
	TaskID         string     `json:"taskId,omitempty"`
	Mood           string     `json:"mood,omitempty"`
	FocusCompleted int        `json:"focusCompleted"`
	At             time.Time  `json:"at"`
}
