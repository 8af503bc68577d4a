package domain

import "fmt"

// Settings is a read-only snapshot of the user's timer preferences.
// Durations are whole minutes.
type Settings struct {
	FocusMinutes      int  `json:"focusDuration" yaml:"focus_minutes"`
	ShortBreakMinutes int  `json:"shortBreakDuration" yaml:"short_break_minutes"`
	LongBreakMinutes  int  `json:"longBreakDuration" yaml:"long_break_minutes"`
	AutoStartBreak    bool `json:"autoStartBreak" yaml:"auto_start_break"`
	AutoStartFocus    bool `json:"autoStartFocus" yaml:"auto_start_focus"`
	SoundEnabled      bool `json:"soundEnabled" yaml:"sound_enabled"`

	// LongBreakInterval makes every Nth auto-started break a long one.
	// Zero keeps every auto-started break short.
	LongBreakInterval int `json:"longBreakInterval" yaml:"long_break_interval"`
}

// DefaultSettings returns the classic 25/5/15 configuration.
func DefaultSettings() Settings {
	return Settings{
		FocusMinutes:      25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		SoundEnabled:      true,
	}
}

// Minutes returns the configured minutes for a mode.
func (s Settings) Minutes(mode TimerMode) int {
	switch mode {
	case ModeShortBreak:
		return s.ShortBreakMinutes
	case ModeLongBreak:
		return s.LongBreakMinutes
	default:
		return s.FocusMinutes
	}
}

// DurationSeconds returns the duration of mode in seconds and whether it
// is usable (strictly positive).
func (s Settings) DurationSeconds(mode TimerMode) (int, bool) {
	m := s.Minutes(mode)
	if m <= 0 {
		return 0, false
	}
	return m * 60, true
}

// Validate checks every duration and the long-break interval.
func (s Settings) Validate() error {
	for _, mode := range []TimerMode{ModeFocus, ModeShortBreak, ModeLongBreak} {
		if _, ok := s.DurationSeconds(mode); !ok {
			return fmt.Errorf("%s: %w", mode, ErrInvalidDuration)
		}
	}
	if s.LongBreakInterval < 0 {
		return fmt.Errorf("long_break_interval: %w", ErrInvalidDuration)
	}
	return nil
}
