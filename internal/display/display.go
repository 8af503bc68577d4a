// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent timer status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/focustrack/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	focusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	breakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	clockRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	clockIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle: muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

const promptText = "focus> "

// SnapshotSource publishes timer snapshots. *timer.Engine satisfies it.
type SnapshotSource interface {
	Subscribe(buffer int) (<-chan domain.Snapshot, func())
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	source  SnapshotSource
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}

	// done is set once the program stops reading messages. Prints after
	// that go straight to stdout instead of blocking on the program.
	done atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(source SnapshotSource) *UI {
	return &UI{
		source:  source,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt on its own line. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintInfo prints an informational line.
func (u *UI) PrintInfo(text string) {
	u.Println(infoStyle.Render("  " + text))
}

// PrintLine prints plain body text.
func (u *UI) PrintLine(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("focus") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	u.done.Store(true)
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt: lipgloss-styled prompts add ANSI bytes that break
	// the textinput width math for long input.
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	snaps, unsubscribe := u.source.Subscribe(8)
	defer unsubscribe()

	m := newModel(ti, snaps, u.inputCh, u.readyCh, &u.done, u.PrintUserInput)

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	input   textinput.Model
	snaps   <-chan domain.Snapshot
	inputCh chan<- string
	readyCh chan struct{}
	done    *atomic.Bool
	echoFn  func(string) // prints user input into scrollback
	snap    domain.Snapshot
	hasSnap bool
	width   int
}

func newModel(ti textinput.Model, snaps <-chan domain.Snapshot, inputCh chan<- string, readyCh chan struct{}, done *atomic.Bool, echoFn func(string)) model {
	return model{
		input:   ti,
		snaps:   snaps,
		inputCh: inputCh,
		readyCh: readyCh,
		done:    done,
		echoFn:  echoFn,
	}
}

// Messages.
type snapshotMsg domain.Snapshot

type sourceClosedMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitSnapshot(m.snaps),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

// waitSnapshot blocks for the next engine snapshot. Re-issued after every
// delivery so the bar follows the engine without polling.
func waitSnapshot(ch <-chan domain.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return sourceClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.done.Store(true)
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if v == "" {
				return m, nil
			}
			m.inputCh <- v
			// Echo from a Cmd so it runs outside Update.
			echoFn := m.echoFn
			if strings.TrimSpace(v) == "" {
				v = "(toggle)"
			}
			return m, func() tea.Msg {
				echoFn(v)
				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case snapshotMsg:
		m.snap = domain.Snapshot(msg)
		m.hasSnap = true
		return m, tea.Batch(waitSnapshot(m.snaps), tea.SetWindowTitle(titleLine(m.snap)))

	case sourceClosedMsg:
		m.snaps = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	if m.hasSnap {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	st := m.snap.State

	modeStyle := focusStyle
	if st.Mode.IsBreak() {
		modeStyle = breakStyle
	}
	clockStyle := clockIdleStyle
	if st.Running {
		clockStyle = clockRunStyle
	}

	parts := []string{
		modeStyle.Render(st.Mode.Label()) + " " + clockStyle.Render(FormatClock(st.RemainingSeconds)) + " " + labelStyle.Render(runGlyph(st.Running)),
	}
	if ctx := contextLine(m.snap); ctx != "" {
		parts = append(parts, labelStyle.Render(ctx))
	}
	if m.snap.FocusCompleted > 0 {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("done: %d", m.snap.FocusCompleted)))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

// FormatClock renders seconds as MM:SS, or H:MM:SS past an hour.
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// StatusLine is the unstyled one-line summary, e.g. "Focus 24:13 ▶ #tag".
func StatusLine(s domain.Snapshot) string {
	line := fmt.Sprintf("%s %s %s", s.State.Mode.Label(), FormatClock(s.State.RemainingSeconds), runGlyph(s.State.Running))
	if ctx := contextLine(s); ctx != "" {
		line += " " + ctx
	}
	return line
}

func titleLine(s domain.Snapshot) string {
	return fmt.Sprintf("%s %s · focustrack", FormatClock(s.State.RemainingSeconds), s.State.Mode.Label())
}

func runGlyph(running bool) string {
	if running {
		return "▶"
	}
	return "⏸"
}

func contextLine(s domain.Snapshot) string {
	var p []string
	if s.Tag != "" {
		p = append(p, "#"+s.Tag)
	}
	if s.TaskID != "" {
		p = append(p, "task:"+s.TaskID)
	}
	if s.Mood != "" {
		p = append(p, "mood:"+s.Mood)
	}
	return strings.Join(p, " ")
}
