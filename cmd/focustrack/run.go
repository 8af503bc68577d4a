package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/focustrack/internal/conversation"
	"github.com/hammamikhairi/focustrack/internal/display"
	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
	"github.com/hammamikhairi/focustrack/internal/settings"
	"github.com/hammamikhairi/focustrack/internal/sound"
	"github.com/hammamikhairi/focustrack/internal/timer"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the interactive timer (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), opts)
		},
	}
}

// cuePlayer opens the audio device, using the --cue-file WAV when given.
func cuePlayer(opts *options) domain.CuePlayer {
	log := opts.log.Named("sound")
	var soundOpts []sound.Option
	if opts.cueFile != "" {
		soundOpts = append(soundOpts, sound.WithCueFile(opts.cueFile))
	}
	return sound.New(log, soundOpts...)
}

func runInteractive(parent context.Context, opts *options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	log := opts.log

	// The UI needs the engine and the engine's notifier prints through the
	// UI, so the UI is built against a late-bound source.
	src := &lateSource{}
	ui := display.NewUI(src)
	notifier := conversation.NewCLINotifier(log.Named("notify"), ui.Printf)

	a, err := openApp(ctx, opts,
		timer.WithNotifier(notifier),
		timer.WithCuePlayer(cuePlayer(opts)),
	)
	if err != nil {
		return err
	}
	src.engine = a.engine

	cli := &cliApp{
		timer:    a.engine,
		settings: a.settings,
		history:  a.history,
		parser:   conversation.NewKeywordParser(log.Named("parser")),
		out:      ui,
		log:      log,
	}

	fmt.Println(display.RenderBanner("Type 'help' for commands, 'quit' to exit."))

	go func() {
		ui.WaitReady()
		cli.run(ctx, ui.InputChan())
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()

	if err := a.Close(); err != nil {
		fmt.Printf("warning: %v\n", err)
		return err
	}
	return nil
}

// lateSource forwards Subscribe to the engine once it exists.
type lateSource struct {
	engine *timer.Engine
}

func (l *lateSource) Subscribe(buffer int) (<-chan domain.Snapshot, func()) {
	return l.engine.Subscribe(buffer)
}

// ── REPL ─────────────────────────────────────────────────────────

type timerControl interface {
	Start() error
	Pause() error
	Toggle() error
	Reset() error
	SelectMode(mode domain.TimerMode) error
	SelectTag(tag string) error
	SelectTask(taskID string) error
	SelectMood(mood string) error
	Snapshot() domain.Snapshot
}

type settingsControl interface {
	Get() domain.Settings
	Set(key, value string) (domain.Settings, error)
}

type printer interface {
	PrintInfo(text string)
	PrintLine(text string)
	PrintHint(text string)
	PrintUrgent(text string)
}

type cliApp struct {
	timer    timerControl
	settings settingsControl
	history  domain.SessionHistory // nil when sessions go to the API
	parser   domain.IntentParser
	out      printer
	log      *logger.Logger
}

func (a *cliApp) run(ctx context.Context, input <-chan string) {
	a.status()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-input:
			if !ok {
				return
			}
			intent, err := a.parser.Parse(ctx, line)
			if err != nil {
				a.log.Error("parsing input: %v", err)
				continue
			}
			a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
			if quit := a.handleIntent(ctx, intent); quit {
				return
			}
		}
	}
}

// handleIntent applies one intent and reports whether the REPL should exit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentStart:
		a.do("start", a.timer.Start)
	case domain.IntentPause:
		a.do("pause", a.timer.Pause)
	case domain.IntentToggle:
		a.do("toggle", a.timer.Toggle)
	case domain.IntentReset:
		a.do("reset", a.timer.Reset)
	case domain.IntentSelectMode:
		a.selectMode(intent.Payload)
	case domain.IntentSelectTag:
		a.setContext("tag", intent.Payload, a.timer.SelectTag)
	case domain.IntentSelectTask:
		a.setContext("task", intent.Payload, a.timer.SelectTask)
	case domain.IntentSelectMood:
		a.setContext("mood", intent.Payload, a.timer.SelectMood)
	case domain.IntentStatus:
		a.status()
	case domain.IntentSettings:
		a.showSettings()
	case domain.IntentSetSetting:
		a.setSetting(intent.Payload)
	case domain.IntentHistory:
		a.showHistory(ctx)
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentQuit:
		a.out.PrintInfo("Bye. Keep it up.")
		return true
	default:
		a.out.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", intent.Payload))
	}
	return false
}

func (a *cliApp) do(name string, cmd func() error) {
	if err := cmd(); err != nil {
		a.out.PrintUrgent(fmt.Sprintf("%s failed: %v", name, err))
		return
	}
	a.status()
}

func (a *cliApp) selectMode(name string) {
	mode, err := domain.ParseMode(name)
	if err != nil {
		a.out.PrintUrgent(err.Error())
		return
	}
	a.do("mode", func() error { return a.timer.SelectMode(mode) })
}

func (a *cliApp) setContext(field, value string, set func(string) error) {
	if err := set(value); err != nil {
		a.out.PrintUrgent(fmt.Sprintf("%s failed: %v", field, err))
		return
	}
	if value == "" {
		a.out.PrintHint(field + " cleared")
		return
	}
	a.out.PrintInfo(fmt.Sprintf("%s set to %s", field, value))
}

func (a *cliApp) status() {
	a.out.PrintInfo(display.StatusLine(a.timer.Snapshot()))
}

func (a *cliApp) showSettings() {
	for _, line := range settingsLines(a.settings.Get()) {
		a.out.PrintLine(line)
	}
}

func (a *cliApp) setSetting(payload string) {
	key, value, ok := strings.Cut(payload, " ")
	if !ok {
		a.out.PrintHint("usage: set <key> <value>")
		return
	}
	if _, err := a.settings.Set(key, value); err != nil {
		a.out.PrintUrgent(err.Error())
		return
	}
	a.out.PrintInfo(fmt.Sprintf("%s = %s", key, value))
}

func (a *cliApp) showHistory(ctx context.Context) {
	if a.history == nil {
		a.out.PrintHint("Sessions are saved to your account; history is only kept locally in guest mode.")
		return
	}
	lines, err := historyLines(ctx, a.history, 10, time.Now())
	if err != nil {
		a.out.PrintUrgent(fmt.Sprintf("history: %v", err))
		return
	}
	for _, line := range lines {
		a.out.PrintLine(line)
	}
}

func (a *cliApp) showHelp() {
	for _, line := range []string{
		"start | go | s        start the countdown",
		"pause | p             pause it",
		"toggle | <space>      start or pause",
		"reset | r             restart the current interval",
		"focus | short | long  switch mode (stops the clock)",
		"tag|task|mood <x>     label the next completed session (no value clears)",
		"status                show the timer",
		"settings              show settings",
		"set <key> <value>     change a setting, e.g. set focus 30",
		"history               recent sessions and today's totals",
		"quit                  exit",
	} {
		a.out.PrintHint(line)
	}
}

// settingsLines renders settings one key per line, using the YAML keys
// accepted by "set".
func settingsLines(s domain.Settings) []string {
	values := map[string]string{
		"focus_minutes":       fmt.Sprint(s.FocusMinutes),
		"short_break_minutes": fmt.Sprint(s.ShortBreakMinutes),
		"long_break_minutes":  fmt.Sprint(s.LongBreakMinutes),
		"long_break_interval": fmt.Sprint(s.LongBreakInterval),
		"auto_start_break":    onOff(s.AutoStartBreak),
		"auto_start_focus":    onOff(s.AutoStartFocus),
		"sound_enabled":       onOff(s.SoundEnabled),
	}
	lines := make([]string, 0, len(values))
	for _, k := range settings.Keys() {
		lines = append(lines, fmt.Sprintf("%-20s %s", k, values[k]))
	}
	return lines
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// historyLines lists the latest sessions followed by today's totals.
func historyLines(ctx context.Context, h domain.SessionHistory, limit int, now time.Time) ([]string, error) {
	sessions, err := h.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	totals, err := h.Totals(ctx, today)
	if err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		return []string{"No sessions yet."}, nil
	}

	var lines []string
	for _, s := range sessions {
		line := fmt.Sprintf("%s  %-11s %3d min", s.EndTime.Local().Format("2006-01-02 15:04"), s.Mode.Label(), s.DurationMinutes)
		if s.Tag != "" {
			line += "  #" + s.Tag
		}
		if s.TaskID != "" {
			line += "  task:" + s.TaskID
		}
		if s.Mood != "" {
			line += "  mood:" + s.Mood
		}
		lines = append(lines, line)
	}

	lines = append(lines, "Today:")
	if len(totals) == 0 {
		lines = append(lines, "  nothing yet")
	}
	for _, t := range totals {
		lines = append(lines, fmt.Sprintf("  %-11s %d sessions, %d min", t.Mode.Label(), t.Count, t.Minutes))
	}
	return lines, nil
}
