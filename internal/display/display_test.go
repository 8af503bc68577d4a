package display

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/focustrack/internal/domain"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{1453, "24:13"},
		{1500, "25:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.secs); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	snap := domain.Snapshot{
		State: domain.TimerState{Mode: domain.ModeFocus, TotalSeconds: 1500, RemainingSeconds: 1453, Running: true},
		Tag:   "writing",
	}
	if got, want := StatusLine(snap), "Focus 24:13 ▶ #writing"; got != want {
		t.Fatalf("StatusLine = %q, want %q", got, want)
	}

	snap = domain.Snapshot{
		State:  domain.TimerState{Mode: domain.ModeShortBreak, TotalSeconds: 300, RemainingSeconds: 300},
		TaskID: "T-1",
		Mood:   "tired",
	}
	if got, want := StatusLine(snap), "Short break 05:00 ⏸ task:T-1 mood:tired"; got != want {
		t.Fatalf("StatusLine = %q, want %q", got, want)
	}
}

func TestModelFollowsSnapshots(t *testing.T) {
	snaps := make(chan domain.Snapshot, 1)
	inputCh := make(chan string, 1)
	m := newModel(textinput.New(), snaps, inputCh, make(chan struct{}), new(atomic.Bool), func(string) {})

	if strings.Contains(m.View(), "Focus") {
		t.Fatal("bar rendered before first snapshot")
	}

	snap := domain.Snapshot{State: domain.TimerState{Mode: domain.ModeLongBreak, TotalSeconds: 900, RemainingSeconds: 61}}
	next, cmd := m.Update(snapshotMsg(snap))
	if cmd == nil {
		t.Fatal("expected follow-up command to wait for the next snapshot")
	}
	view := next.View()
	if !strings.Contains(view, "Long break") || !strings.Contains(view, "01:01") {
		t.Fatalf("bar missing state: %q", view)
	}

	next, _ = next.Update(sourceClosedMsg{})
	if next.(model).snaps != nil {
		t.Fatal("closed source should stop waiting")
	}
}

func TestModelSubmitsInput(t *testing.T) {
	inputCh := make(chan string, 1)
	ti := textinput.New()
	ti.Focus()
	m := newModel(ti, nil, inputCh, make(chan struct{}), new(atomic.Bool), func(string) {})
	m.input.SetValue("tag writing")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	select {
	case got := <-inputCh:
		if got != "tag writing" {
			t.Fatalf("submitted %q", got)
		}
	default:
		t.Fatal("nothing submitted")
	}
	if v := next.(model).input.Value(); v != "" {
		t.Fatalf("input not cleared: %q", v)
	}

	// Empty lines are dropped.
	next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	select {
	case got := <-inputCh:
		t.Fatalf("unexpected submission %q", got)
	default:
	}
}

func TestCtrlCMarksDoneBeforeQuit(t *testing.T) {
	done := new(atomic.Bool)
	m := newModel(textinput.New(), nil, make(chan string, 1), make(chan struct{}), done, func(string) {})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !done.Load() {
		t.Fatal("done not set on ctrl-c")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl-c did not quit")
	}
}

func TestPrintAfterQuitDoesNotBlock(t *testing.T) {
	u := NewUI(nil)
	// Nothing reads from a program that is not running, so any Send
	// through it would block.
	u.program = tea.NewProgram(nil)
	m := newModel(textinput.New(), nil, make(chan string, 1), make(chan struct{}), &u.done, func(string) {})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	finished := make(chan struct{})
	go func() {
		u.Printf("session saved")
		u.PrintInfo("bye")
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("print blocked after quit")
	}
}

func TestCentreBanner(t *testing.T) {
	out := centre("ab\nabcd\n", "hi", 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "   ") || !strings.Contains(lines[0], "ab") {
		t.Fatalf("art not centred: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "    ") || !strings.Contains(lines[2], "hi") {
		t.Fatalf("subtitle not centred: %q", lines[2])
	}
}
