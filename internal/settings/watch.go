package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch publishes the backing file's contents whenever someone else
// modifies it. The directory is watched rather than the file, so editors
// that save by writing a new file and renaming it over the old one are
// seen too. Watch returns once the watcher is installed; it stops when
// ctx is cancelled. Does nothing without a file.
func (p *Provider) Watch(ctx context.Context) error {
	if p.file == nil {
		return nil
	}

	dir := filepath.Dir(p.file.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	p.log.Debug("watching %s", p.file.Path())
	go p.watchLoop(ctx, w)
	return nil
}

func (p *Provider) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != p.file.Path() {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				p.reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.log.Error("settings watcher: %v", err)
		}
	}
}

func (p *Provider) reload() {
	s, changed, err := p.file.Reload()
	if err != nil {
		p.log.Error("reloading settings: %v", err)
		return
	}
	if !changed {
		return
	}
	p.log.Info("settings file changed, reloaded")
	p.Replace(s)
}
