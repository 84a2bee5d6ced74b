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

// Package lock bundles the three named, cross-process semaphores the
// transaction manager coordinates on: exclusive writer admission, bounded
// read-only slot admission, and an exclusive rename window.
package lock

import (
	stderrors "errors"

	"github.com/pkg/errors"

	"github.com/vishsahu/btrfstrans-go/pkg/semaphore"
)

const mode = 0o644

// projection ids distinguish the three semaphores derived from the same
// root path with ftok.
const (
	writeProj  = 'w'
	readProj   = 'r'
	renameProj = 'x'
)

// Set is the three semaphores guarding one managed root: Write admits at
// most one writer cluster-wide, Read bounds concurrent read transactions to
// N, and Rename serializes the commit rename-swap window against
// read-snapshot creation.
type Set struct {
	Write  *semaphore.Semaphore
	Read   *semaphore.Semaphore
	Rename *semaphore.Semaphore
}

// Open derives the three semaphore keys from root via ftok and opens
// (creating if absent) a Set admitting at most maxRead concurrent readers.
func Open(root string, maxRead int) (*Set, error) {
	writeKey, err := semaphore.Ftok(root, writeProj)
	if err != nil {
		return nil, errors.Wrap(err, "deriving write semaphore key")
	}
	readKey, err := semaphore.Ftok(root, readProj)
	if err != nil {
		return nil, errors.Wrap(err, "deriving read semaphore key")
	}
	renameKey, err := semaphore.Ftok(root, renameProj)
	if err != nil {
		return nil, errors.Wrap(err, "deriving rename semaphore key")
	}

	write, err := semaphore.Open(writeKey, mode, 1)
	if err != nil {
		return nil, errors.Wrap(err, "opening write semaphore")
	}
	read, err := semaphore.Open(readKey, mode, maxRead)
	if err != nil {
		return nil, errors.Wrap(err, "opening read semaphore")
	}
	rename, err := semaphore.Open(renameKey, mode, 1)
	if err != nil {
		return nil, errors.Wrap(err, "opening rename semaphore")
	}

	return &Set{Write: write, Read: read, Rename: rename}, nil
}

// Close calls Close on all three semaphores. The underlying SysV sets are
// never unlinked: other processes sharing the root may still hold them.
func (s *Set) Close() error {
	return stderrors.Join(s.Write.Close(), s.Read.Close(), s.Rename.Close())
}

func (s *Set) AcquireWrite() error  { return s.Write.Wait() }
func (s *Set) ReleaseWrite() error  { return s.Write.Post() }
func (s *Set) AcquireRead() error   { return s.Read.Wait() }
func (s *Set) ReleaseRead() error   { return s.Read.Post() }
func (s *Set) AcquireRename() error { return s.Rename.Wait() }
func (s *Set) ReleaseRename() error { return s.Rename.Post() }
