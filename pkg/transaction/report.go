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

package transaction

import "github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"

// MaxRead returns N, the number of read-only snapshot slots this manager
// admits.
func (m *Manager) MaxRead() int {
	return m.maxRead
}

// SlotInfo describes one occupied read-only snapshot slot.
type SlotInfo struct {
	Index  int
	Path   string
	SizeMB uint
}

// ListSlots reports every currently occupied read-only snapshot slot and
// its size. It is read-only and does not require any transaction to be
// open.
func (m *Manager) ListSlots() ([]SlotInfo, error) {
	var slots []SlotInfo
	for i := 0; i < m.maxRead; i++ {
		path := m.layout.ROSnapSlot(i)
		exists, err := vfs.Exists(m.fs, path)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		size, err := vfs.DirSizeMB(m.fs, path)
		if err != nil {
			return nil, err
		}
		slots = append(slots, SlotInfo{Index: i, Path: path, SizeMB: size})
	}
	return slots, nil
}

// HeadSizeMB reports the size of the current committed tree.
func (m *Manager) HeadSizeMB() (uint, error) {
	return vfs.DirSizeMB(m.fs, m.layout.Head())
}
