// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/watch.go
// Summary: Reloads the system config when the file changes on disk.

package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config when texelframe.json changes and notifies
// subscribers with the fresh config.
type Watcher struct {
	watcher   *fsnotify.Watcher
	path      string
	callbacks []func(Config)
	closeCh   chan struct{}
}

// Watch starts watching the system config file. Editors typically
// rename-replace, so the parent directory is watched instead of the file.
func Watch() (*Watcher, error) {
	path, err := systemConfigPath()
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		watcher: fsw,
		path:    path,
		closeCh: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// OnChange registers a callback invoked after each successful reload.
// Must be called before the first change arrives to be race-free.
func (w *Watcher) OnChange(fn func(Config)) {
	w.callbacks = append(w.callbacks, fn)
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.closeCh)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	// Debounce: editors fire several events per save.
	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(100 * time.Millisecond)

		case <-pending:
			pending = nil
			if err := Reload(); err != nil {
				log.Printf("Config: reload after change failed: %v", err)
				continue
			}
			cfg := System()
			for _, fn := range w.callbacks {
				fn(cfg)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config: watch error: %v", err)

		case <-w.closeCh:
			return
		}
	}
}
