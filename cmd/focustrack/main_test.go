package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/focustrack/internal/conversation"
	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
	"github.com/hammamikhairi/focustrack/internal/settings"
	"github.com/hammamikhairi/focustrack/internal/storage"
)

type mockTimer struct {
	mu    sync.Mutex
	snap  domain.Snapshot
	calls []string
}

func (m *mockTimer) call(name string, fn func(*domain.Snapshot)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	if fn != nil {
		fn(&m.snap)
	}
	return nil
}

func (m *mockTimer) Start() error {
	return m.call("start", func(s *domain.Snapshot) { s.State.Running = true })
}
func (m *mockTimer) Pause() error {
	return m.call("pause", func(s *domain.Snapshot) { s.State.Running = false })
}
func (m *mockTimer) Toggle() error { return m.call("toggle", nil) }
func (m *mockTimer) Reset() error  { return m.call("reset", nil) }
func (m *mockTimer) SelectMode(mode domain.TimerMode) error {
	return m.call("mode:"+mode.String(), func(s *domain.Snapshot) { s.State.Mode = mode })
}
func (m *mockTimer) SelectTag(tag string) error {
	return m.call("tag:"+tag, func(s *domain.Snapshot) { s.Tag = tag })
}
func (m *mockTimer) SelectTask(id string) error { return m.call("task:"+id, nil) }
func (m *mockTimer) SelectMood(mood string) error {
	return m.call("mood:"+mood, nil)
}
func (m *mockTimer) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

type mockPrinter struct {
	lines []string
}

func (p *mockPrinter) PrintInfo(text string)   { p.lines = append(p.lines, "info: "+text) }
func (p *mockPrinter) PrintLine(text string)   { p.lines = append(p.lines, "line: "+text) }
func (p *mockPrinter) PrintHint(text string)   { p.lines = append(p.lines, "hint: "+text) }
func (p *mockPrinter) PrintUrgent(text string) { p.lines = append(p.lines, "urgent: "+text) }

func (p *mockPrinter) contains(s string) bool {
	for _, l := range p.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func newTestCLI(history domain.SessionHistory) (*cliApp, *mockTimer, *mockPrinter, *settings.Provider) {
	log := logger.New(logger.LevelOff, nil)
	tm := &mockTimer{snap: domain.Snapshot{State: domain.TimerState{Mode: domain.ModeFocus, TotalSeconds: 1500, RemainingSeconds: 1500}}}
	out := &mockPrinter{}
	prov := settings.NewProvider(domain.DefaultSettings(), log)
	return &cliApp{
		timer:    tm,
		settings: prov,
		history:  history,
		parser:   conversation.NewKeywordParser(log),
		out:      out,
		log:      log,
	}, tm, out, prov
}

func TestREPLDispatch(t *testing.T) {
	cli, tm, out, prov := newTestCLI(nil)

	input := make(chan string, 16)
	for _, line := range []string{"start", "tag writing", "sb", "set focus 30", "set focus 0", "history", "bogus", "quit", "start"} {
		input <- line
	}
	close(input)

	cli.run(context.Background(), input)

	want := []string{"start", "tag:writing", "mode:short_break"}
	if strings.Join(tm.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v (input after quit must be ignored)", tm.calls, want)
	}
	if got := prov.Get().FocusMinutes; got != 30 {
		t.Fatalf("focus minutes = %d, want 30", got)
	}
	for _, s := range []string{
		"info: Short break 25:00",
		"tag set to writing",
		"urgent: focus",
		"guest mode",
		`Didn't catch "bogus"`,
		"Bye.",
	} {
		if !out.contains(s) {
			t.Errorf("output missing %q:\n%s", s, strings.Join(out.lines, "\n"))
		}
	}
}

func TestHistoryLines(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	sink := storage.NewMemorySink(log)
	ctx := context.Background()

	if lines, err := historyLines(ctx, sink, 10, time.Now()); err != nil || len(lines) != 1 || lines[0] != "No sessions yet." {
		t.Fatalf("empty history = %v (%v)", lines, err)
	}

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)
	sink.Record(ctx, domain.CompletedSession{ID: "old", Mode: domain.ModeFocus, DurationMinutes: 25, EndTime: now.Add(-24 * time.Hour)})
	sink.Record(ctx, domain.CompletedSession{ID: "new", Mode: domain.ModeFocus, DurationMinutes: 50, EndTime: now.Add(-time.Hour), Tag: "deep"})

	lines, err := historyLines(ctx, sink, 10, now)
	if err != nil {
		t.Fatalf("historyLines: %v", err)
	}
	out := strings.Join(lines, "\n")
	if !strings.Contains(lines[0], "#deep") {
		t.Fatalf("newest session should come first:\n%s", out)
	}
	if !strings.Contains(out, "Focus       1 sessions, 50 min") {
		t.Fatalf("today's totals should only count today:\n%s", out)
	}
}

func TestSettingsCommands(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "settings.yaml")

	exec := func(args ...string) (string, error) {
		root := newRootCmd()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs(append(args, "--config", cfg, "--quiet", "--log-file", "stderr"))
		err := root.Execute()
		return buf.String(), err
	}

	if _, err := exec("settings", "set", "focus", "45"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := exec("settings", "set", "focus", "-1"); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if _, err := exec("settings", "set", "volume", "11"); err == nil {
		t.Fatal("expected error for unknown key")
	}

	out, err := exec("settings", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "focus_minutes        45") {
		t.Fatalf("show output:\n%s", out)
	}
	if !strings.Contains(out, "sound_enabled        on") {
		t.Fatalf("show output:\n%s", out)
	}
}

func TestHistoryCommandUsesGuestStore(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(envAPIURL, "")
	t.Setenv(envAPIToken, "")

	log := logger.New(logger.LevelOff, nil)
	store, err := storage.OpenGuestStore(filepath.Join(dataDir, storage.GuestDBName), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	end := time.Now()
	store.Record(context.Background(), domain.CompletedSession{ID: "1", Mode: domain.ModeShortBreak, DurationMinutes: 5, StartTime: end.Add(-5 * time.Minute), EndTime: end})
	store.Close()

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"history", "--data-dir", dataDir, "--quiet", "--log-file", "stderr"})
	if err := root.Execute(); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(buf.String(), "Short break") {
		t.Fatalf("history output:\n%s", buf.String())
	}
}

func TestGinModeFollowsLogLevel(t *testing.T) {
	log := logger.New(logger.LevelNormal, nil)
	if got := ginMode(log); got != gin.ReleaseMode {
		t.Fatalf("normal level: mode = %q", got)
	}
	log.SetLevel(logger.LevelVerbose)
	if got := ginMode(log); got != gin.DebugMode {
		t.Fatalf("verbose level: mode = %q", got)
	}
}
