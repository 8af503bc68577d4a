// Package settings supplies timer preferences to the engine: an in-memory
// snapshot with change subscribers, optionally backed by a YAML file that
// is watched for external edits.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Compile-time interface check.
var _ domain.SettingsSource = (*Provider)(nil)

// Option configures the provider.
type Option func(*Provider)

// WithFile persists every update to fs.
func WithFile(fs *FileStore) Option {
	return func(p *Provider) {
		p.file = fs
	}
}

// Provider holds the current settings. Safe for concurrent use.
type Provider struct {
	mu      sync.RWMutex
	current domain.Settings
	subs    []chan domain.Settings
	file    *FileStore
	log     *logger.Logger
}

// NewProvider creates a provider starting from initial.
func NewProvider(initial domain.Settings, log *logger.Logger, opts ...Option) *Provider {
	p := &Provider{current: initial, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the current snapshot.
func (p *Provider) Get() domain.Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Subscribe registers for change notifications. A full channel drops its
// oldest pending value so subscribers always end up with the newest one.
func (p *Provider) Subscribe(buffer int) (<-chan domain.Settings, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan domain.Settings, buffer)

	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, sub := range p.subs {
				if sub == ch {
					p.subs = append(p.subs[:i], p.subs[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
}

// Update applies fn to a copy of the current settings, validates the
// result, persists it when a file is configured, and publishes it.
func (p *Provider) Update(fn func(*domain.Settings)) (domain.Settings, error) {
	p.mu.Lock()
	next := p.current
	fn(&next)
	if err := next.Validate(); err != nil {
		p.mu.Unlock()
		return p.Get(), err
	}
	if p.file != nil {
		if err := p.file.Save(next); err != nil {
			p.mu.Unlock()
			return p.Get(), fmt.Errorf("saving settings: %w", err)
		}
	}
	p.current = next
	p.broadcastLocked(next)
	p.mu.Unlock()

	p.log.Debug("settings updated: %+v", next)
	return next, nil
}

// Replace swaps in s as-is and publishes it. Used when the file changes
// on disk; the file loader already discards unusable values.
func (p *Provider) Replace(s domain.Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s == p.current {
		return
	}
	p.current = s
	p.broadcastLocked(s)
}

// Set changes one setting by its YAML key.
func (p *Provider) Set(key, value string) (domain.Settings, error) {
	apply, err := setter(key, value)
	if err != nil {
		return p.Get(), err
	}
	return p.Update(apply)
}

func (p *Provider) broadcastLocked(s domain.Settings) {
	for _, ch := range p.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Full: drop the stale value and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"focus_minutes",
		"short_break_minutes",
		"long_break_minutes",
		"long_break_interval",
		"auto_start_break",
		"auto_start_focus",
		"sound_enabled",
	}
}

func setter(key, value string) (func(*domain.Settings), error) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	value = strings.TrimSpace(value)

	intField := func(dst func(*domain.Settings) *int) (func(*domain.Settings), error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a whole number", key, value)
		}
		return func(s *domain.Settings) { *dst(s) = n }, nil
	}
	boolField := func(dst func(*domain.Settings) *bool) (func(*domain.Settings), error) {
		b, err := parseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return func(s *domain.Settings) { *dst(s) = b }, nil
	}

	switch key {
	case "focus", "focus_minutes":
		return intField(func(s *domain.Settings) *int { return &s.FocusMinutes })
	case "short", "short_break", "short_break_minutes":
		return intField(func(s *domain.Settings) *int { return &s.ShortBreakMinutes })
	case "long", "long_break", "long_break_minutes":
		return intField(func(s *domain.Settings) *int { return &s.LongBreakMinutes })
	case "long_break_interval":
		return intField(func(s *domain.Settings) *int { return &s.LongBreakInterval })
	case "auto_start_break":
		return boolField(func(s *domain.Settings) *bool { return &s.AutoStartBreak })
	case "auto_start_focus":
		return boolField(func(s *domain.Settings) *bool { return &s.AutoStartFocus })
	case "sound", "sound_enabled":
		return boolField(func(s *domain.Settings) *bool { return &s.SoundEnabled })
	default:
		return nil, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%q is not on/off", v)
	}
	return b, nil
}
