package timer

import (
	"fmt"
	"time"

	"github.com/hammamikhairi/focustrack/internal/domain"
)

// complete runs once per interval that reaches zero while running. The
// running flag is cleared first, so later ticks find an idle timer and
// never record the same interval twice.
func (e *Engine) complete(now time.Time) {
	e.store.SetRunning(false)
	e.disarm()

	st := e.store.State()
	total := time.Duration(st.TotalSeconds) * time.Second
	session := domain.CompletedSession{
		ID:              e.newID(),
		Mode:            st.Mode,
		DurationMinutes: st.TotalSeconds / 60,
		StartTime:       now.Add(-total),
		EndTime:         now,
		Tag:             e.tag,
		TaskID:          e.taskID,
		Mood:            e.mood,
	}
	if st.Mode == domain.ModeFocus {
		e.focusCompleted++
	}
	e.log.Info("%s completed (%d min)", st.Mode, session.DurationMinutes)

	// Persistence is fire-and-forget; failures come back through
	// reportSaveFailure and never undo the transition.
	e.recorder.Enqueue(session)

	settings := e.settings.Get()
	if settings.SoundEnabled && e.cue != nil {
		go e.playCue()
	}

	next, chain := e.chainTarget(st.Mode, settings)
	e.notify(completionMessage(st.Mode, next, chain))

	if !chain {
		return
	}
	e.store.SetMode(next)
	e.store.SetTotalDuration(e.durationFor(next, settings))
	e.store.ResetTimer()
	e.store.SetRunning(true)
	e.arm()
	e.log.Debug("auto-started %s", next)
}

// chainTarget decides which mode, if any, starts automatically after mode.
func (e *Engine) chainTarget(mode domain.TimerMode, s domain.Settings) (domain.TimerMode, bool) {
	switch {
	case mode == domain.ModeFocus && s.AutoStartBreak:
		if s.LongBreakInterval > 0 && e.focusCompleted%s.LongBreakInterval == 0 {
			return domain.ModeLongBreak, true
		}
		return domain.ModeShortBreak, true
	case mode.IsBreak() && s.AutoStartFocus:
		return domain.ModeFocus, true
	default:
		return mode, false
	}
}

func (e *Engine) playCue() {
	if err := e.cue.PlayCue(e.ctx); err != nil {
		e.log.Debug("completion cue: %v", err)
	}
}

func (e *Engine) notify(msg string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(e.ctx, msg); err != nil {
		e.log.Error("notifying completion: %v", err)
	}
}

// reportSaveFailure runs on the recorder goroutine.
func (e *Engine) reportSaveFailure(session domain.CompletedSession, err error) {
	if e.notifier == nil {
		return
	}
	msg := fmt.Sprintf("[Sessions] Couldn't save your %d min %s session: %v",
		session.DurationMinutes, session.Mode.Label(), err)
	if nerr := e.notifier.NotifyUrgent(e.ctx, msg); nerr != nil {
		e.log.Error("notifying save failure: %v", nerr)
	}
}

func completionMessage(done, next domain.TimerMode, chained bool) string {
	var msg string
	if done == domain.ModeFocus {
		msg = "[Timer] Focus session complete. Time for a break."
	} else {
		msg = fmt.Sprintf("[Timer] %s over. Ready to focus?", done.Label())
	}
	if chained {
		msg += fmt.Sprintf(" %s started.", next.Label())
	}
	return msg
}
