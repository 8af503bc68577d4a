package timer

import (
	"testing"

	"github.com/hammamikhairi/focustrack/internal/domain"
)

func checkInvariant(t *testing.T, s *Store) {
	t.Helper()
	st := s.State()
	if st.RemainingSeconds < 0 || st.RemainingSeconds > st.TotalSeconds {
		t.Fatalf("invariant broken: remaining=%d total=%d", st.RemainingSeconds, st.TotalSeconds)
	}
}

func TestStoreNewIsFresh(t *testing.T) {
	s := NewStore(domain.ModeFocus, 1500)
	st := s.State()
	if !st.Fresh() || st.TotalSeconds != 1500 || st.Mode != domain.ModeFocus {
		t.Fatalf("unexpected initial state %+v", st)
	}

	fallback := NewStore(domain.ModeFocus, 0)
	if fallback.State().TotalSeconds != 25*60 {
		t.Fatalf("expected default focus duration, got %d", fallback.State().TotalSeconds)
	}
}

func TestStoreSetModeStopsClockKeepsRemaining(t *testing.T) {
	s := NewStore(domain.ModeFocus, 1500)
	s.SetRunning(true)
	s.SetRemaining(900)

	s.SetMode(domain.ModeShortBreak)

	st := s.State()
	if st.Running {
		t.Fatal("SetMode must stop the clock")
	}
	if st.RemainingSeconds != 900 {
		t.Fatalf("SetMode must not touch remaining, got %d", st.RemainingSeconds)
	}
	if st.Mode != domain.ModeShortBreak {
		t.Fatalf("mode = %s, want short_break", st.Mode)
	}
}

func TestStoreSetRemainingClamps(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"within range", 42, 42},
		{"negative", -5, 0},
		{"above total", 5000, 1500},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(domain.ModeFocus, 1500)
			s.SetRemaining(tt.input)
			if got := s.State().RemainingSeconds; got != tt.want {
				t.Fatalf("remaining = %d, want %d", got, tt.want)
			}
			checkInvariant(t, s)
		})
	}
}

func TestStoreSetTotalDuration(t *testing.T) {
	s := NewStore(domain.ModeFocus, 1500)
	s.SetRemaining(100)

	if !s.SetTotalDuration(1800) {
		t.Fatal("expected positive duration to be accepted")
	}
	st := s.State()
	if st.TotalSeconds != 1800 || st.RemainingSeconds != 1800 {
		t.Fatalf("unexpected state %+v", st)
	}

	for _, bad := range []int{0, -60} {
		if s.SetTotalDuration(bad) {
			t.Fatalf("duration %d should be refused", bad)
		}
	}
	if s.State().TotalSeconds != 1800 {
		t.Fatal("refused duration must leave state untouched")
	}
	checkInvariant(t, s)
}

func TestStoreResetTimer(t *testing.T) {
	s := NewStore(domain.ModeLongBreak, 900)
	s.SetRunning(true)
	s.SetRemaining(12)

	s.ResetTimer()

	st := s.State()
	if st.Running || st.RemainingSeconds != 900 {
		t.Fatalf("unexpected state after reset %+v", st)
	}
}
