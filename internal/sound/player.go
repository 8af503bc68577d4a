// Package sound plays the completion cue.
package sound

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Output format shared by the chime and any WAV cue.
const (
	SampleRate   = 44100
	ChannelCount = 1
)

var _ domain.CuePlayer = (*Player)(nil)

// Option configures the Player.
type Option func(*Player) error

// WithCueFile plays the given 16-bit mono WAV instead of the built-in chime.
func WithCueFile(path string) Option {
	return func(p *Player) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read cue: %w", err)
		}
		pcm, err := extractPCM(data)
		if err != nil {
			return fmt.Errorf("cue %s: %w", path, err)
		}
		p.cue = pcm
		return nil
	}
}

// Player plays the completion cue through oto.
type Player struct {
	ctx    *oto.Context
	cue    []byte
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer initializes the system audio context. Returns an error if the
// audio device is unavailable.
func NewPlayer(log *logger.Logger, opts ...Option) (*Player, error) {
	p := &Player{cue: Chime(), log: log}
	for _, o := range opts {
		if err := o(p); err != nil {
			return nil, err
		}
	}

	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan
	p.ctx = ctx

	log.Debug("audio player initialized (rate=%d, channels=%d, cue=%d bytes)", SampleRate, ChannelCount, len(p.cue))
	return p, nil
}

// PlayCue plays the cue and blocks until it ends or ctx is cancelled.
// A cue that is already playing is cut off.
func (p *Player) PlayCue(ctx context.Context) error {
	p.Stop()

	player := p.ctx.NewPlayer(bytes.NewReader(p.cue))
	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
		case <-ticker.C:
		}
	}

	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()

	if err := player.Close(); err != nil {
		return err
	}
	return ctx.Err()
}

// Stop interrupts the cue, if any. Safe to call when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := min(start+chunkSize, len(wav))
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
