package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/focustrack/internal/domain"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	FocusMinutes      int   `yaml:"focus_minutes"`
	ShortBreakMinutes int   `yaml:"short_break_minutes"`
	LongBreakMinutes  int   `yaml:"long_break_minutes"`
	LongBreakInterval int   `yaml:"long_break_interval"`
	AutoStartBreak    bool  `yaml:"auto_start_break"`
	AutoStartFocus    bool  `yaml:"auto_start_focus"`
	SoundEnabled      *bool `yaml:"sound_enabled"`
}

// FileStore reads and writes settings as YAML. It remembers the bytes of
// its own last read or write so that only edits made by someone else show
// up as changes.
type FileStore struct {
	path string

	mu   sync.Mutex
	seen []byte
}

// NewFileStore uses path, or <user config dir>/<appName>/settings.yaml
// when path is empty.
func NewFileStore(appName, path string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}
		path = filepath.Join(configDir, appName, settingsFileName)
	}
	return &FileStore{path: filepath.Clean(path)}, nil
}

// Path returns the settings file location.
func (f *FileStore) Path() string { return f.path }

// Load reads the file. A missing file yields the defaults; fields with
// unusable values keep their defaults.
func (f *FileStore) Load() (domain.Settings, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultSettings(), nil
		}
		return domain.DefaultSettings(), fmt.Errorf("read settings file: %w", err)
	}

	f.mu.Lock()
	f.seen = raw
	f.mu.Unlock()
	return parse(raw)
}

// Reload reads the file and reports whether its contents differ from what
// this store last read or wrote. A missing file is not a change.
func (f *FileStore) Reload() (domain.Settings, bool, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Settings{}, false, nil
		}
		return domain.Settings{}, false, fmt.Errorf("read settings file: %w", err)
	}

	f.mu.Lock()
	if bytes.Equal(raw, f.seen) {
		f.mu.Unlock()
		return domain.Settings{}, false, nil
	}
	f.seen = raw
	f.mu.Unlock()

	s, err := parse(raw)
	return s, err == nil, err
}

// Save writes s through a temporary file and a rename, so readers never
// see a half-written file.
func (f *FileStore) Save(s domain.Settings) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	sound := s.SoundEnabled
	data := yamlSettings{
		FocusMinutes:      s.FocusMinutes,
		ShortBreakMinutes: s.ShortBreakMinutes,
		LongBreakMinutes:  s.LongBreakMinutes,
		LongBreakInterval: s.LongBreakInterval,
		AutoStartBreak:    s.AutoStartBreak,
		AutoStartFocus:    s.AutoStartFocus,
		SoundEnabled:      &sound,
	}

	serialized, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(serialized); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	// Mark before the rename so the watcher sees our own write as known.
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.seen
	f.seen = serialized
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		f.seen = prev
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func parse(raw []byte) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	var data yamlSettings
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	applyYAML(&settings, data)
	return settings, nil
}

func applyYAML(s *domain.Settings, data yamlSettings) {
	if data.FocusMinutes > 0 {
		s.FocusMinutes = data.FocusMinutes
	}
	if data.ShortBreakMinutes > 0 {
		s.ShortBreakMinutes = data.ShortBreakMinutes
	}
	if data.LongBreakMinutes > 0 {
		s.LongBreakMinutes = data.LongBreakMinutes
	}
	if data.LongBreakInterval >= 0 {
		s.LongBreakInterval = data.LongBreakInterval
	}
	if data.SoundEnabled != nil {
		s.SoundEnabled = *data.SoundEnabled
	}
	s.AutoStartBreak = data.AutoStartBreak
	s.AutoStartFocus = data.AutoStartFocus
}
