// SPDX-License-Identifier: MPL-2.0

//go:build unix

package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// envLock holds an advisory flock on the environment's lock file, serializing
// provisioning and removal across launcher processes. The zero-byte lock file
// is harmless if orphaned: the kernel releases the flock when the fd is closed,
// including on process crash.
type envLock struct {
	file *os.File
	mode lockMode
}

// acquireEnvLock opens (or creates) the lock file and takes a flock in the
// requested mode, polling until it is granted or ctx is done. onWait is
// called once if the lock is not immediately available.
func acquireEnvLock(ctx context.Context, path string, mode lockMode, onWait func()) (*envLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	l := &envLock{file: f, mode: mode}
	if err := l.flock(ctx, mode, onWait); err != nil {
		_ = f.Close()
		return nil, err
	}
	return l, nil
}

// downgrade converts an exclusive lock into a shared one. The conversion is
// not atomic: another process may take the lock in between, so callers must
// re-inspect the environment afterwards.
func (l *envLock) downgrade(ctx context.Context) error {
	if l == nil || l.file == nil || l.mode == lockShared {
		return nil
	}
	if err := l.flock(ctx, lockShared, nil); err != nil {
		return err
	}
	l.mode = lockShared
	return nil
}

// release unlocks the flock and closes the file descriptor. It is safe to call
// multiple times; subsequent calls are no-ops.
func (l *envLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	return errors.Join(unlockErr, closeErr)
}

func (l *envLock) flock(ctx context.Context, mode lockMode, onWait func()) error {
	how := unix.LOCK_SH
	if mode == lockExclusive {
		how = unix.LOCK_EX
	}

	var ticker *time.Ticker
	for {
		err := unix.Flock(int(l.file.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("flock %s: %w", l.file.Name(), err)
		}

		if ticker == nil {
			ticker = time.NewTicker(lockPollInterval)
			defer ticker.Stop()
			if onWait != nil {
				onWait()
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %s lock on %s: %w", mode, l.file.Name(), ctx.Err())
		case <-ticker.C:
		}
	}
}
