package sound

import (
	"context"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

var _ domain.CuePlayer = (*NoOp)(nil)

// NoOp stands in when there is no audio device.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent cue player.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// PlayCue only logs.
func (n *NoOp) PlayCue(ctx context.Context) error {
	n.log.Debug("sound no-op: would play completion cue")
	return nil
}

// New returns an audio player, or a NoOp when the device cannot be opened.
func New(log *logger.Logger, opts ...Option) domain.CuePlayer {
	p, err := NewPlayer(log, opts...)
	if err != nil {
		log.Warn("audio unavailable, completion cue disabled: %v", err)
		return NewNoOp(log)
	}
	return p
}
