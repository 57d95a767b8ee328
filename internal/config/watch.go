package config

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file whenever an external edit lands and passes
// the new snapshot to onChange. Editor write patterns (truncate+write,
// rename-over) are debounced into a single reload. Returns a stop function.
func Watch(path string, onChange func(Config)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: the file itself may not exist yet, and editors
	// replace it by rename.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	stop := make(chan struct{})
	go func() {
		var pending *time.Timer
		reload := func() {
			cfg, err := Load(path)
			if err != nil {
				slog.Warn("config reload failed", slog.Any("error", err))
				return
			}
			slog.Info("config reloaded", slog.String("path", path))
			onChange(cfg)
		}
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(200*time.Millisecond, reload)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", slog.Any("error", err))
			case <-stop:
				return
			}
		}
	}()

	return func() {
		close(stop)
		w.Close()
	}, nil
}
