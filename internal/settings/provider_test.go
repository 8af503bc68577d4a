package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

func TestProviderSet(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)

	tests := []struct {
		key     string
		value   string
		check   func(domain.Settings) bool
		wantErr bool
	}{
		{"focus_minutes", "30", func(s domain.Settings) bool { return s.FocusMinutes == 30 }, false},
		{"focus", "45", func(s domain.Settings) bool { return s.FocusMinutes == 45 }, false},
		{"short-break", "10", func(s domain.Settings) bool { return s.ShortBreakMinutes == 10 }, false},
		{"long_break_minutes", "20", func(s domain.Settings) bool { return s.LongBreakMinutes == 20 }, false},
		{"long_break_interval", "4", func(s domain.Settings) bool { return s.LongBreakInterval == 4 }, false},
		{"auto_start_break", "on", func(s domain.Settings) bool { return s.AutoStartBreak }, false},
		{"auto_start_focus", "true", func(s domain.Settings) bool { return s.AutoStartFocus }, false},
		{"sound", "off", func(s domain.Settings) bool { return !s.SoundEnabled }, false},
		{"focus_minutes", "0", nil, true},
		{"focus_minutes", "abc", nil, true},
		{"sound", "maybe", nil, true},
		{"volume", "3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			p := NewProvider(domain.DefaultSettings(), log)
			got, err := p.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if got != domain.DefaultSettings() {
					t.Fatalf("failed update must not change settings, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(got) || !tt.check(p.Get()) {
				t.Fatalf("setting not applied: %+v", got)
			}
		})
	}
}

func TestProviderRejectsInvalidDuration(t *testing.T) {
	p := NewProvider(domain.DefaultSettings(), logger.New(logger.LevelOff, nil))
	_, err := p.Update(func(s *domain.Settings) { s.ShortBreakMinutes = -1 })
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestProviderSubscribeKeepsNewest(t *testing.T) {
	p := NewProvider(domain.DefaultSettings(), logger.New(logger.LevelOff, nil))
	ch, cancel := p.Subscribe(1)

	for _, m := range []int{30, 35, 40} {
		if _, err := p.Update(func(s *domain.Settings) { s.FocusMinutes = m }); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	got := <-ch
	if got.FocusMinutes != 40 {
		t.Fatalf("subscriber got %d, want newest 40", got.FocusMinutes)
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	cancel()
}

func TestProviderPersistsUpdates(t *testing.T) {
	fs, err := NewFileStore("focustrack", filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	p := NewProvider(domain.DefaultSettings(), logger.New(logger.LevelOff, nil), WithFile(fs))

	if _, err := p.Set("focus_minutes", "50"); err != nil {
		t.Fatalf("set: %v", err)
	}

	loaded, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.FocusMinutes != 50 {
		t.Fatalf("persisted focus = %d, want 50", loaded.FocusMinutes)
	}
}

func TestProviderReplaceSkipsUnchanged(t *testing.T) {
	p := NewProvider(domain.DefaultSettings(), logger.New(logger.LevelOff, nil))
	ch, cancel := p.Subscribe(1)
	defer cancel()

	p.Replace(domain.DefaultSettings())
	select {
	case s := <-ch:
		t.Fatalf("unexpected publish %+v", s)
	default:
	}

	next := domain.DefaultSettings()
	next.AutoStartBreak = true
	p.Replace(next)
	if got := <-ch; !got.AutoStartBreak {
		t.Fatalf("expected replaced settings, got %+v", got)
	}
}
