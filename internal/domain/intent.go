package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentStart
	IntentPause
	IntentToggle
	IntentReset
	IntentSelectMode // payload: mode name
	IntentSelectTag  // payload: tag, empty clears
	IntentSelectTask // payload: task id, empty clears
	IntentSelectMood // payload: mood, empty clears
	IntentStatus
	IntentSettings
	IntentSetSetting // payload: "key value"
	IntentHistory
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentStart:
		return "start"
	case IntentPause:
		return "pause"
	case IntentToggle:
		return "toggle"
	case IntentReset:
		return "reset"
	case IntentSelectMode:
		return "select_mode"
	case IntentSelectTag:
		return "select_tag"
	case IntentSelectTask:
		return "select_task"
	case IntentSelectMood:
		return "select_mood"
	case IntentStatus:
		return "status"
	case IntentSettings:
		return "settings"
	case IntentSetSetting:
		return "set_setting"
	case IntentHistory:
		return "history"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}
