// Package watch carries signals from CLI invocations to the running daemon.
// Each signal is a small JSON file dropped into a shared directory and
// picked up with fsnotify.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/julianstephens/wurkwurk/internal/logger"
)

type Kind string

const (
	// KindSettings means settings were saved and the cycle should re-arm.
	KindSettings Kind = "settings"
	// KindPrompt asks for a manual prompt that bypasses do-not-disturb.
	KindPrompt Kind = "prompt"
	// KindSnooze carries Minutes; <= 0 skips to the next cycle.
	KindSnooze Kind = "snooze"
	// KindTask means the task timer was started or stopped.
	KindTask Kind = "task"
	// KindLogged means another process submitted a log, which answers any
	// pending prompt alarm.
	KindLogged Kind = "logged"
)

type Signal struct {
	Kind    Kind      `json:"kind"`
	Minutes int       `json:"minutes,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

const signalExt = ".json"

// Send drops sig into dir. The file is written under a hidden name and then
// renamed so the watcher never sees a partial write.
func Send(dir string, sig Signal) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create signal dir: %w", err)
	}
	if sig.SentAt.IsZero() {
		sig.SentAt = time.Now()
	}
	data, err := json.Marshal(sig)
	if err != nil {
		return err
	}

	name := uuid.NewString()
	tmp := filepath.Join(dir, "."+name)
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write signal: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name+signalExt)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish signal: %w", err)
	}
	return nil
}

// Watcher delivers signals found in a directory.
type Watcher struct {
	dir     string
	fs      *fsnotify.Watcher
	signals chan Signal
}

// New starts watching dir, creating it if needed. Signals left over from
// before the daemon started are discarded.
func New(dir string) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create signal dir: %w", err)
	}
	discardStale(dir)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watcher.Add: %w", err)
	}
	return &Watcher{dir: dir, fs: fw, signals: make(chan Signal, 8)}, nil
}

func (w *Watcher) Signals() <-chan Signal {
	return w.signals
}

// Run forwards signals until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()
	defer close(w.signals)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) || !isSignalFile(event.Name) {
				continue
			}
			sig, err := consume(event.Name)
			if err != nil {
				logger.Warn("Dropping unreadable signal", "file", event.Name, "error", err)
				continue
			}
			select {
			case w.signals <- sig:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("Signal watcher error", "error", err)
		}
	}
}

func isSignalFile(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.HasSuffix(base, signalExt)
}

// consume reads and removes a signal file.
func consume(path string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	data, err := io.ReadAll(f)
	f.Close()
	os.Remove(path)
	if err != nil {
		return Signal{}, err
	}

	var sig Signal
	if err := json.Unmarshal(data, &sig); err != nil {
		return Signal{}, fmt.Errorf("invalid signal: %w", err)
	}
	return sig, nil
}

func discardStale(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}
