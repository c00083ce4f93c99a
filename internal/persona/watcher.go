package persona

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for editors that write the override file in several events.
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the workspace override file when it changes and publishes
// the validated result on Updates. Invalid files are logged and dropped; the
// last good overrides stay in effect.
type Watcher struct {
	workspaceDir string
	fw           *fsnotify.Watcher
	updates      chan *OverridesFile
}

// NewWatcher watches workspaceDir for override file changes. The directory
// is watched rather than the file itself so replace-by-rename still fires.
func NewWatcher(workspaceDir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(workspaceDir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &Watcher{
		workspaceDir: workspaceDir,
		fw:           fw,
		updates:      make(chan *OverridesFile, 1),
	}, nil
}

// Updates delivers each successfully reloaded override document.
func (w *Watcher) Updates() <-chan *OverridesFile {
	return w.updates
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != OverridesFileName {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			slog.Warn("Persona override watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	f, err := LoadOverrides(w.workspaceDir)
	if err != nil {
		slog.Error("Failed to reload persona overrides", "workspace_dir", w.workspaceDir, "error", err)
		return
	}
	if f == nil {
		slog.Info("Persona override file removed, reverting to base catalog")
	} else {
		slog.Info("Persona overrides reloaded", "persona_count", len(f.Overrides))
	}
	w.publish(f)
}

// publish delivers f, displacing an undrained previous update. Every
// channel operation is non-blocking: the subscriber may drain the channel
// at any point between these steps, and reload must never block on it.
func (w *Watcher) publish(f *OverridesFile) {
	select {
	case w.updates <- f:
		return
	default:
	}
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- f:
	default:
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
