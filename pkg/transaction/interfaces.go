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

import "github.com/vishsahu/btrfstrans-go/pkg/volume"

// Volume is the four-operation contract the manager drives snapshots
// through. *volume.Adapter satisfies it against a real Btrfs filesystem;
// tests substitute a fake so the manager's orchestration logic can be
// exercised without a live Btrfs volume.
type Volume interface {
	IsSubvolume(path string) (volume.Status, error)
	CreateSubvolume(path string) error
	CreateSnapshot(src, dst string, readonly bool) error
	DeleteSubvolume(path string) error
}

// Locker is the three named semaphores the manager acquires and releases
// around write, read, and rename windows. *lock.Set satisfies it.
type Locker interface {
	AcquireWrite() error
	ReleaseWrite() error
	AcquireRead() error
	ReleaseRead() error
	AcquireRename() error
	ReleaseRename() error
	Close() error
}
