/*
Copyright © 2025-2026 SUSE LLC
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package semaphore wraps SysV counting semaphores for cross-process
// mutual exclusion. Go's ecosystem has no maintained wrapper for POSIX
// named semaphores without cgo; SysV sets, reachable through
// golang.org/x/sys/unix's raw syscall numbers, are the standard substitute.
package semaphore

import (
	"unsafe"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"
)

const (
	ipcCreat = 0o1000
	ipcExcl  = 0o2000
	setVal   = 16
)

// maxEintrRetries bounds the immediate-retry loop on EINTR so a pathological
// stream of interrupting signals can't spin forever.
const maxEintrRetries = 1 << 16

type sembuf struct {
	num uint16
	op  int16
	flg int16
}

// Semaphore is a single-member SysV semaphore set, identified by a key
// stable across processes pointed at the same resource.
type Semaphore struct {
	id int32
}

// Open opens the semaphore set keyed by key, creating it with the given
// mode and initial count if it does not already exist. If the set already
// exists, its current count is left untouched — only the creating process
// sets the initial value.
func Open(key int32, mode uint32, initial int) (*Semaphore, error) {
	id, _, errno := unix.Syscall(unix.SYS_SEMGET, uintptr(key), 1, uintptr(mode|ipcCreat|ipcExcl))
	if errno == 0 {
		if _, _, errno := unix.Syscall6(unix.SYS_SEMCTL, id, 0, setVal, uintptr(initial), 0, 0); errno != 0 {
			return nil, errno
		}
		return &Semaphore{id: int32(id)}, nil
	}
	if errno != unix.EEXIST {
		return nil, errno
	}

	id, _, errno = unix.Syscall(unix.SYS_SEMGET, uintptr(key), 1, uintptr(mode|ipcCreat))
	if errno != 0 {
		return nil, errno
	}
	return &Semaphore{id: int32(id)}, nil
}

// Wait decrements the semaphore, blocking while its value is zero. EINTR is
// retried immediately rather than backed off: a signal interrupting a
// blocking wait should re-enter the wait, not delay it.
func (s *Semaphore) Wait() error {
	return s.op(-1)
}

// Post increments the semaphore, releasing one waiter if any is blocked.
func (s *Semaphore) Post() error {
	return s.op(1)
}

func (s *Semaphore) op(delta int16) error {
	sb := sembuf{num: 0, op: delta, flg: 0}
	attempt := func() error {
		_, _, errno := unix.Syscall(unix.SYS_SEMOP, uintptr(s.id), uintptr(unsafe.Pointer(&sb)), 1)
		if errno == 0 {
			return nil
		}
		if errno == unix.EINTR {
			return errno
		}
		return backoff.Permanent(errno)
	}
	return backoff.Retry(attempt, backoff.WithMaxRetries(backoff.NewConstantBackOff(0), maxEintrRetries))
}

// Close is a no-op that always returns nil. SysV semaphores have no
// per-process handle to release and are never unlinked here (other
// processes sharing the root may still depend on them); Close exists so
// call sites can bracket a critical section the same way they would with a
// POSIX named semaphore.
func (s *Semaphore) Close() error {
	return nil
}
