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

// Package layout is the single source of truth for every path derived from
// a managed root. Nothing outside this package string-concatenates paths
// under the root.
package layout

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
)

const (
	headName    = "head"
	headOldName = "head_old"
	wrSnapName  = "wr_snap"
	roSnapsName = "ro_snaps"
	roSlotFmt   = "ro_snap_%d"
)

// ErrNoFreeSlot is returned by AllocateSlot when all N read-only slots are occupied.
var ErrNoFreeSlot = errors.New("no free read-only snapshot slot")

// Layout computes the canonical on-disk paths rooted at Root.
type Layout struct {
	root    string
	maxRead int
}

// New validates root's length against the OS path limit and returns a Layout
// bound to it, admitting up to maxRead concurrent read-only slots.
func New(root string, maxRead int) (*Layout, error) {
	if len(root) == 0 || len(root) >= unix.PathMax {
		return nil, fmt.Errorf("root path length %d exceeds limit %d", len(root), unix.PathMax)
	}
	if maxRead <= 0 {
		return nil, fmt.Errorf("max read-only transactions must be positive, got %d", maxRead)
	}
	return &Layout{root: filepath.Clean(root), maxRead: maxRead}, nil
}

// Root returns the managed root directory.
func (l *Layout) Root() string {
	return l.root
}

// MaxRead returns N, the number of read-only snapshot slots.
func (l *Layout) MaxRead() int {
	return l.maxRead
}

// Head is the authoritative current committed tree.
func (l *Layout) Head() string {
	return filepath.Join(l.root, headName)
}

// HeadOld is the previous head, present only mid-commit or after a crash.
func (l *Layout) HeadOld() string {
	return filepath.Join(l.root, headOldName)
}

// WrSnap is the writable snapshot serving the open write transaction, if any.
func (l *Layout) WrSnap() string {
	return filepath.Join(l.root, wrSnapName)
}

// ROSnaps is the container subvolume holding read-only snapshot slots.
func (l *Layout) ROSnaps() string {
	return filepath.Join(l.root, roSnapsName)
}

// ROSnapSlot returns the path of slot i, i in [0, MaxRead).
func (l *Layout) ROSnapSlot(i int) string {
	return filepath.Join(l.ROSnaps(), fmt.Sprintf(roSlotFmt, i))
}

// AllocateSlot scans slots in ascending index and returns the first one that
// does not exist on fs, along with its path. It returns ErrNoFreeSlot if
// every slot in [0, MaxRead) is occupied.
func (l *Layout) AllocateSlot(fs vfs.FS) (int, string, error) {
	for i := 0; i < l.maxRead; i++ {
		path := l.ROSnapSlot(i)
		exists, err := vfs.Exists(fs, path)
		if err != nil {
			return -1, "", err
		}
		if !exists {
			return i, path, nil
		}
	}
	return -1, "", ErrNoFreeSlot
}
