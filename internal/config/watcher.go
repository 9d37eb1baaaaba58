package config

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher hot-reloads the YAML settings document. The parent
// directory is watched rather than the file itself because editors and
// deploy tools typically replace files by rename.
type SettingsWatcher struct {
	path     string
	callback func(*Settings)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewSettingsWatcher creates a watcher that invokes callback with each
// successfully loaded document after the file changes.
func NewSettingsWatcher(path string, callback func(*Settings)) *SettingsWatcher {
	return &SettingsWatcher{
		path:     path,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start loads the document once, then begins watching. Call Stop to
// clean up.
func (sw *SettingsWatcher) Start() (*Settings, error) {
	settings, err := LoadSettings(sw.path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(sw.path)); err != nil {
		_ = w.Close()
		return nil, err
	}
	sw.watcher = w

	go sw.loop()
	log.Printf("config: watching %s for settings changes", sw.path)
	return settings, nil
}

// Stop shuts down the watcher.
func (sw *SettingsWatcher) Stop() {
	if sw.watcher != nil {
		_ = sw.watcher.Close()
	}
	<-sw.done
}

func (sw *SettingsWatcher) loop() {
	defer close(sw.done)
	for {
		select {
		case evt, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(evt.Name) != filepath.Clean(sw.path) {
				continue
			}
			sw.reload()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config: watcher error: %v", err)
		}
	}
}

// reload parses the changed document. A document that fails to load
// keeps the previous settings in effect; the callback only ever sees
// valid documents.
func (sw *SettingsWatcher) reload() {
	settings, err := LoadSettings(sw.path)
	if err != nil {
		log.Printf("config: settings reload skipped: %v", err)
		return
	}
	if sw.callback != nil {
		sw.callback(settings)
	}
}
