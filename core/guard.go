package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/huangsam/hunterstats/internal/contract"
)

// ErrRunInProgress is returned when another cycle holds the run guard.
var ErrRunInProgress = errors.New("another run is already in progress")

// staleLockAge is how old a lock file must be before it is considered abandoned.
const staleLockAge = time.Hour

// RunGuard provides single-flight execution of state-mutating cycles.
// The mutex covers the current process; the lock file covers other processes
// sharing the same state store. An empty path disables the lock file.
type RunGuard struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewRunGuard creates a guard backed by the lock file at path.
func NewRunGuard(path string) *RunGuard {
	return &RunGuard{path: path, now: time.Now}
}

// Acquire takes the guard or returns ErrRunInProgress without blocking.
func (g *RunGuard) Acquire() error {
	if !g.mu.TryLock() {
		return ErrRunInProgress
	}
	if g.path == "" {
		return nil
	}
	if err := g.createLockFile(); err != nil {
		g.mu.Unlock()
		return err
	}
	return nil
}

// Release gives the guard back. It must follow a successful Acquire.
func (g *RunGuard) Release() {
	if g.path != "" {
		if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			contract.LogWarn("failed to remove lock file", err)
		}
	}
	g.mu.Unlock()
}

func (g *RunGuard) createLockFile() error {
	for range 2 {
		f, err := os.OpenFile(g.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(g.path)
				return fmt.Errorf("failed to write lock file: %w", werr)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		info, err := os.Stat(g.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue // Released between our open and stat
		}
		if err != nil {
			return fmt.Errorf("failed to inspect lock file: %w", err)
		}
		age := g.now().Sub(info.ModTime())
		if age < staleLockAge {
			return ErrRunInProgress
		}
		slog.Warn("Replacing stale lock file", "path", g.path, "age", age.Round(time.Second))
		if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}
	return ErrRunInProgress
}
