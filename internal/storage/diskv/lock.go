package diskv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	lockName = ".lock"
	// A lock older than this was left by a process that died mid-update.
	lockStale   = 30 * time.Second
	lockTimeout = 5 * time.Second
	lockPoll    = 10 * time.Millisecond
)

var errLockTimeout = errors.New("timed out waiting for the state lock")

// acquireLock creates the lock file exclusively, waiting for the current
// holder to remove it. It returns the release function.
func (s *Store) acquireLock() (func(), error) {
	path := filepath.Join(s.basePath, lockName)
	deadline := time.Now().Add(lockTimeout)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("creating state lock: %w", err)
		}
		if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) > lockStale {
			_ = os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, errLockTimeout
		}
		time.Sleep(lockPoll)
	}
}
