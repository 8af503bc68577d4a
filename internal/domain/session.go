package domain

import "time"

// CompletedSession records one countdown that ran to zero. It is built by
// the timer engine and handed to a SessionSink.
type CompletedSession struct {
	ID              string    `json:"id"`
	Mode            TimerMode `json:"mode"`
	DurationMinutes int       `json:"duration"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Tag             string    `json:"tag,omitempty"`
	TaskID          string    `json:"taskId,omitempty"`
	Mood            string    `json:"mood,omitempty"`
}

// ModeTotals aggregates recorded sessions for one mode.
type ModeTotals struct {
	Mode    TimerMode `json:"mode"`
	Count   int       `json:"count"`
	Minutes int       `json:"minutes"`
}
