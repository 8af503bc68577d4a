package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Option configures the engine.
type Option func(*Engine)

// WithTickInterval sets the nominal period of the countdown callback.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithNotifier sets where completion messages and save failures go.
func WithNotifier(n domain.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithCuePlayer sets the completion sound. Without one the engine is silent
// even when sound is enabled in settings.
func WithCuePlayer(p domain.CuePlayer) Option {
	return func(e *Engine) {
		e.cue = p
	}
}

// WithIDFunc overrides the session ID generator.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// Engine is the process-wide timer driver. One goroutine owns the Store;
// UI commands and settings changes are marshalled into it over channels,
// and observers read snapshots through Subscribe.
type Engine struct {
	store        *Store
	settings     domain.SettingsProvider
	recorder     *Recorder
	notifier     domain.Notifier
	cue          domain.CuePlayer
	log          *logger.Logger
	clock        Clock
	tickInterval time.Duration
	newID        func() string

	// Owned by the loop goroutine.
	ctx            context.Context
	ticker         Ticker
	deadline       time.Time
	lastGood       map[domain.TimerMode]int
	tag            string
	taskID         string
	mood           string
	focusCompleted int

	cmds     chan command
	stopped  chan struct{}
	launched atomic.Bool
	cancel   context.CancelFunc

	mu     sync.Mutex
	latest domain.Snapshot
	subs   []chan domain.Snapshot
}

type command struct {
	apply func() error
	err   error
	done  chan struct{}
}

// New creates an engine in Focus mode using the current Focus duration.
// Call Launch to start the loop.
func New(settings domain.SettingsProvider, sink domain.SessionSink, log *logger.Logger, opts ...Option) *Engine {
	defaults := domain.DefaultSettings()
	e := &Engine{
		settings:     settings,
		log:          log,
		clock:        SystemClock{},
		tickInterval: time.Second,
		newID:        uuid.NewString,
		ctx:          context.Background(),
		lastGood: map[domain.TimerMode]int{
			domain.ModeFocus:      defaults.FocusMinutes * 60,
			domain.ModeShortBreak: defaults.ShortBreakMinutes * 60,
			domain.ModeLongBreak:  defaults.LongBreakMinutes * 60,
		},
		cmds:    make(chan command),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	initial := settings.Get()
	e.rememberGood(initial)
	e.recorder = NewRecorder(sink, log.Named("recorder"), e.reportSaveFailure)
	e.store = NewStore(domain.ModeFocus, e.durationFor(domain.ModeFocus, initial))
	e.publish()
	return e
}

// Launch starts the engine loop in the background. Non-blocking.
// If the settings provider publishes changes, the engine follows them.
func (e *Engine) Launch(ctx context.Context) {
	if !e.launched.CompareAndSwap(false, true) {
		e.log.Warn("timer engine already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.ctx = childCtx

	var changes <-chan domain.Settings
	var unsubscribe func()
	if src, ok := e.settings.(domain.SettingsSource); ok {
		changes, unsubscribe = src.Subscribe(4)
	}

	go e.loop(childCtx, changes, unsubscribe)
	e.log.Info("timer engine started (tick=%s)", e.tickInterval)
}

// Close stops the loop, closes subscriber channels and waits for queued
// sessions to reach the sink, bounded by ctx.
func (e *Engine) Close(ctx context.Context) error {
	if e.launched.Load() {
		e.cancel()
		<-e.stopped
	}

	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}

	err := e.recorder.Close(ctx)
	e.log.Info("timer engine stopped")
	return err
}

// ── UI command surface ───────────────────────────────────────────

// Start runs the countdown. A running timer is left alone; an exhausted
// one is reset to a fresh countdown for its mode first.
func (e *Engine) Start() error {
	return e.exec(func() error {
		e.start()
		return nil
	})
}

// Pause stops the countdown, keeping the remaining time. Pausing a paused
// timer does nothing.
func (e *Engine) Pause() error {
	return e.exec(func() error {
		e.pause()
		return nil
	})
}

// Toggle pauses a running timer and starts a stopped one.
func (e *Engine) Toggle() error {
	return e.exec(func() error {
		if e.store.State().Running {
			e.pause()
		} else {
			e.start()
		}
		return nil
	})
}

// Reset stops the clock and restores a full countdown for the current
// mode, picking up any settings change that was deferred.
func (e *Engine) Reset() error {
	return e.exec(func() error {
		e.reset()
		return nil
	})
}

// SelectMode switches mode with a fresh countdown. It always stops the clock.
func (e *Engine) SelectMode(mode domain.TimerMode) error {
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}
	return e.exec(func() error {
		e.store.SetMode(mode)
		e.disarm()
		e.reset()
		return nil
	})
}

// SelectTag sets the tag attached to the next completed session.
func (e *Engine) SelectTag(tag string) error {
	return e.exec(func() error {
		e.tag = tag
		return nil
	})
}

// SelectTask sets the task attached to the next completed session.
func (e *Engine) SelectTask(taskID string) error {
	return e.exec(func() error {
		e.taskID = taskID
		return nil
	})
}

// SelectMood sets the mood attached to the next completed session.
func (e *Engine) SelectMood(mood string) error {
	return e.exec(func() error {
		e.mood = mood
		return nil
	})
}

// Snapshot returns the latest published view of the timer.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

// PendingRecords returns how many completed sessions are still on their
// way to the sink.
func (e *Engine) PendingRecords() int {
	return e.recorder.Pending()
}

// Subscribe registers an observer. The current snapshot is delivered
// first. Slow observers miss intermediate frames instead of blocking the
// engine. The returned func unsubscribes.
func (e *Engine) Subscribe(buffer int) (<-chan domain.Snapshot, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan domain.Snapshot, buffer)

	e.mu.Lock()
	ch <- e.latest
	e.subs = append(e.subs, ch)
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, sub := range e.subs {
				if sub == ch {
					e.subs = append(e.subs[:i], e.subs[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
}

// exec runs fn on the loop goroutine and waits for it.
func (e *Engine) exec(fn func() error) error {
	if !e.launched.Load() {
		return domain.ErrEngineStopped
	}
	cmd := command{apply: fn, done: make(chan struct{})}
	select {
	case e.cmds <- cmd:
	case <-e.stopped:
		return domain.ErrEngineStopped
	}
	select {
	case <-cmd.done:
		return cmd.err
	case <-e.stopped:
		return domain.ErrEngineStopped
	}
}

// ── Loop ─────────────────────────────────────────────────────────

func (e *Engine) loop(ctx context.Context, changes <-chan domain.Settings, unsubscribe func()) {
	defer close(e.stopped)
	defer e.disarm()
	if unsubscribe != nil {
		defer unsubscribe()
	}

	for {
		var tick <-chan time.Time
		if e.ticker != nil {
			tick = e.ticker.C()
		}

		select {
		case <-ctx.Done():
			return
		case cmd := <-e.cmds:
			cmd.err = cmd.apply()
			close(cmd.done)
			e.publish()
		case s, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			e.reconcile(s)
			e.publish()
		case <-tick:
			e.tick()
			e.publish()
		}
	}
}

// arm computes the deadline from the current remaining time and replaces
// any existing ticker, so at most one is ever alive.
func (e *Engine) arm() {
	e.disarm()
	remaining := e.store.State().RemainingSeconds
	e.deadline = e.clock.Now().Add(time.Duration(remaining) * time.Second)
	e.ticker = e.clock.NewTicker(e.tickInterval)
}

func (e *Engine) disarm() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

// tick recomputes remaining time from the deadline rather than
// decrementing, so late callbacks self-correct.
func (e *Engine) tick() {
	if !e.store.State().Running {
		e.disarm()
		return
	}
	now := e.clock.Now()
	left := secondsUntil(e.deadline, now)
	e.store.SetRemaining(left)
	if left <= 0 {
		e.complete(now)
	}
}

func (e *Engine) start() {
	st := e.store.State()
	if st.Running {
		return
	}
	if st.RemainingSeconds == 0 {
		e.reset()
	}
	e.store.SetRunning(true)
	e.arm()
	st = e.store.State()
	e.log.Debug("started %s with %ds left", st.Mode, st.RemainingSeconds)
}

func (e *Engine) pause() {
	if !e.store.State().Running {
		return
	}
	now := e.clock.Now()
	left := secondsUntil(e.deadline, now)
	e.store.SetRemaining(left)
	if left <= 0 {
		e.complete(now)
		return
	}
	e.store.SetRunning(false)
	e.disarm()
	e.log.Debug("paused with %ds left", left)
}

func (e *Engine) reset() {
	st := e.store.State()
	e.store.SetTotalDuration(e.durationFor(st.Mode, e.settings.Get()))
	e.store.ResetTimer()
	e.disarm()
}

// reconcile applies a settings change only to an idle, untouched timer.
// Anything else waits for the next reset or mode switch.
func (e *Engine) reconcile(s domain.Settings) {
	e.rememberGood(s)
	st := e.store.State()
	if !st.Fresh() {
		e.log.Debug("settings changed while %s is in progress, deferring", st.Mode)
		return
	}
	secs := e.durationFor(st.Mode, s)
	if secs == st.TotalSeconds {
		return
	}
	e.store.SetTotalDuration(secs)
	e.log.Info("%s duration now %ds", st.Mode, secs)
}

// rememberGood records every valid duration in s, whichever mode is
// active, so a later invalid value falls back to the latest good one.
func (e *Engine) rememberGood(s domain.Settings) {
	for mode := range e.lastGood {
		if secs, ok := s.DurationSeconds(mode); ok {
			e.lastGood[mode] = secs
		}
	}
}

// durationFor returns the configured duration for mode, falling back to
// the last good value when the setting is not positive.
func (e *Engine) durationFor(mode domain.TimerMode, s domain.Settings) int {
	if secs, ok := s.DurationSeconds(mode); ok {
		return secs
	}
	e.log.Warn("ignoring invalid %s duration (%d min), keeping %ds", mode, s.Minutes(mode), e.lastGood[mode])
	return e.lastGood[mode]
}

// publish stores the latest snapshot and fans it out without blocking.
func (e *Engine) publish() {
	snap := domain.Snapshot{
		State:          e.store.State(),
		Tag:            e.tag,
		TaskID:         e.taskID,
		Mood:           e.mood,
		FocusCompleted: e.focusCompleted,
		At:             e.clock.Now(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest = snap
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
