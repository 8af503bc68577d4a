package domain

import (
	"context"
	"time"
)

// SettingsProvider supplies a synchronous snapshot of the current settings.
type SettingsProvider interface {
	Get() Settings
}

// SettingsSource is a SettingsProvider that also publishes changes.
// The returned cancel func unsubscribes and closes the channel.
type SettingsSource interface {
	SettingsProvider
	Subscribe(buffer int) (<-chan Settings, func())
}

// SessionSink durably records completed intervals. Implementations own
// their timeout and retry policy; callers only see the final error.
// Implementations can be local (guest) or API-backed (authenticated).
type SessionSink interface {
	Record(ctx context.Context, session CompletedSession) error
}

// SessionHistory reads back recorded sessions. Only local stores
// implement it.
type SessionHistory interface {
	List(ctx context.Context, limit int) ([]CompletedSession, error)
	Totals(ctx context.Context, since time.Time) ([]ModeTotals, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout, a TUI scrollback, or a log.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// CuePlayer plays the completion sound. Failures are never fatal.
type CuePlayer interface {
	PlayCue(ctx context.Context) error
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
