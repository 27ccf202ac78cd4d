package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	stopSignalFile  = "stop"
	pauseSignalFile = "pause"
)

// ControlWatcher observes a signals directory so a running session can be
// stopped or paused from outside the process by touching a file.
type ControlWatcher struct {
	signalsDir string

	mu          sync.RWMutex
	stopSignal  bool
	pauseSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewControlWatcher creates a watcher over sessionDir/signals. It degrades to
// stat-based polling when the filesystem watcher cannot be set up, so control
// files keep working either way.
func NewControlWatcher(sessionDir string) (*ControlWatcher, error) {
	signalsDir := filepath.Join(sessionDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	cw := &ControlWatcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - ShouldStop/ShouldPause stat the files
		return cw, nil
	}
	cw.watcher = watcher

	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		cw.watcher = nil
		return cw, nil
	}

	go cw.watchSignals()

	return cw, nil
}

func (cw *ControlWatcher) watchSignals() {
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.mu.Lock()
			base := filepath.Base(event.Name)
			if base == stopSignalFile && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				cw.stopSignal = true
			} else if base == pauseSignalFile && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				cw.pauseSignal = true
			}
			cw.mu.Unlock()
		case <-cw.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// ShouldStop returns true once a stop signal has been received.
func (cw *ControlWatcher) ShouldStop() bool {
	// Also check the file directly in case the watcher missed it
	stopPath := filepath.Join(cw.signalsDir, stopSignalFile)
	if _, err := os.Stat(stopPath); err == nil {
		cw.mu.Lock()
		cw.stopSignal = true
		cw.mu.Unlock()
	}

	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.stopSignal
}

// ShouldPause reflects the presence of the pause file: pause holds only
// while the file exists, so removing it resumes the session.
func (cw *ControlWatcher) ShouldPause() bool {
	pausePath := filepath.Join(cw.signalsDir, pauseSignalFile)
	_, err := os.Stat(pausePath)

	cw.mu.Lock()
	cw.pauseSignal = err == nil
	paused := cw.pauseSignal
	cw.mu.Unlock()
	return paused
}

// SendStop creates the stop signal file.
func (cw *ControlWatcher) SendStop() error {
	path := filepath.Join(cw.signalsDir, stopSignalFile)
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// SendPause creates the pause signal file.
func (cw *ControlWatcher) SendPause() error {
	path := filepath.Join(cw.signalsDir, pauseSignalFile)
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Resume removes the pause signal file.
func (cw *ControlWatcher) Resume() error {
	err := os.Remove(filepath.Join(cw.signalsDir, pauseSignalFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ClearSignals removes the signal files and resets signal state.
func (cw *ControlWatcher) ClearSignals() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.stopSignal = false
	cw.pauseSignal = false

	os.Remove(filepath.Join(cw.signalsDir, stopSignalFile))
	os.Remove(filepath.Join(cw.signalsDir, pauseSignalFile))
}

// Close shuts down the watcher.
func (cw *ControlWatcher) Close() {
	close(cw.done)
	if cw.watcher != nil {
		cw.watcher.Close()
	}
}
