// Package lockfile provides directory-based locking so that only one chatbot
// process serves the webhook and writes the appointment ledger at a time.
//
// The lock uses flock, which the kernel releases automatically when the
// process exits, gracefully or not.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFileName is the name of the lock file created in the data directory
const LockFileName = "medpet.lock"

// Lock represents an active directory lock
type Lock struct {
	file     *os.File
	path     string
	acquired bool
}

// LockError reports that another chatbot process already holds the lock.
type LockError struct {
	Path string
	Info string
}

func (e *LockError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("another chatbot instance is already running (lock %s held by %s)", e.Path, e.Info)
	}
	return fmt.Sprintf("another chatbot instance is already running (lock %s)", e.Path)
}

// Acquire attempts to take an exclusive lock on the data directory, creating
// it if needed. It returns a LockError when another process holds the lock.
func Acquire(dataDir string) (*Lock, error) {
	lockPath := filepath.Join(dataDir, LockFileName)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		info := readHolderInfo(lockPath)
		slog.Error("Lockfile.Acquire failed, lock already held", "lock_path", lockPath, "holder", info)
		return nil, &LockError{Path: lockPath, Info: info}
	}

	// Record our PID so a conflicting start can name the holder.
	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		slog.Warn("Lockfile.Acquire could not write PID", "error", err, "lock_path", lockPath)
	}
	if err := file.Sync(); err != nil {
		slog.Debug("Lockfile.Acquire sync failed", "error", err, "lock_path", lockPath)
	}

	slog.Info("Lockfile.Acquire acquired data directory lock", "lock_path", lockPath, "pid", os.Getpid())
	return &Lock{file: file, path: lockPath, acquired: true}, nil
}

// Release drops the lock and removes the lock file. Safe to call more than
// once.
func (l *Lock) Release() error {
	if l == nil || !l.acquired {
		return nil
	}
	l.acquired = false

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		slog.Warn("Lockfile.Release unlock failed", "error", err, "lock_path", l.path)
	}
	if err := l.file.Close(); err != nil {
		slog.Warn("Lockfile.Release close failed", "error", err, "lock_path", l.path)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", l.path, err)
	}

	slog.Info("Lockfile.Release released data directory lock", "lock_path", l.path)
	return nil
}

// readHolderInfo reads the PID recorded by the current holder, best effort.
func readHolderInfo(lockPath string) string {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return ""
	}
	pidStr := strings.TrimSpace(string(data))
	if pidStr == "" {
		return ""
	}
	if _, err := strconv.Atoi(pidStr); err != nil {
		return ""
	}
	return "pid " + pidStr
}
