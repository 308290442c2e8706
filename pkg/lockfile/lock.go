// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package lockfile guards the whole provisioning procedure against
// concurrent runs on the same host. One PID marker file, taken exclusively;
// a held lock is a hard stop requiring operator intervention. Stale lock
// cleanup is deliberately manual - without a liveness check we cannot tell a
// stale lock from a live concurrent run.
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

// Lock is the handle for a held lock. Acquired once at procedure start,
// released unconditionally at exit.
type Lock struct {
	path string
	f    *os.File
}

// ErrHeld reports a lock already held by another process.
type ErrHeld struct {
	Path  string
	Owner int //pid read from the marker, 0 if unreadable
}

func (e *ErrHeld) Error() string {
	if e.Owner > 0 {
		return fmt.Sprintf("lock %s held by pid %d; if that process is gone, remove the file and rerun", e.Path, e.Owner)
	}
	return fmt.Sprintf("lock %s held by another process; if no other install is running, remove the file and rerun", e.Path)
}

// Acquire creates the marker file at path, failing if it already exists.
// The file records our PID, and an flock on the open descriptor backstops
// the existence check.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &ErrHeld{Path: path, Owner: ownerPid(path)}
		}
		return nil, fmt.Errorf("creating lock %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &ErrHeld{Path: path}
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing lock %s: %w", path, err)
	}
	return &Lock{path: path, f: f}, nil
}

// Release drops the flock and removes the marker. Safe to call more than
// once.
func (l *Lock) Release() {
	if l == nil || l.f == nil {
		return
	}
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		log.Logf("unlocking %s: %s", l.path, err)
	}
	l.f.Close()
	l.f = nil
	if err := os.Remove(l.path); err != nil {
		log.Logf("removing lock %s: %s", l.path, err)
	}
}

// Path returns the marker location.
func (l *Lock) Path() string { return l.path }

func ownerPid(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
