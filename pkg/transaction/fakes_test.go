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

package transaction_test

import (
	"path/filepath"

	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
	"github.com/vishsahu/btrfstrans-go/pkg/txerr"
	"github.com/vishsahu/btrfstrans-go/pkg/volume"
)

// fakeVolume stands in for the real Btrfs ioctl adapter: subvolumes and
// snapshots are plain directories on the backing test filesystem. It
// exercises the manager's orchestration logic without a live Btrfs
// filesystem.
type fakeVolume struct {
	fs vfs.FS
}

func newFakeVolume(fs vfs.FS) *fakeVolume {
	return &fakeVolume{fs: fs}
}

func (f *fakeVolume) IsSubvolume(path string) (volume.Status, error) {
	exists, err := vfs.Exists(f.fs, path, true)
	if err != nil {
		return volume.Inaccessible, err
	}
	if !exists {
		return volume.No, nil
	}
	isDir, err := vfs.IsDir(f.fs, path, true)
	if err != nil {
		return volume.Inaccessible, err
	}
	if !isDir {
		return volume.No, nil
	}
	return volume.Yes, nil
}

func (f *fakeVolume) CreateSubvolume(path string) error {
	exists, err := vfs.Exists(f.fs, path)
	if err != nil {
		return err
	}
	if exists {
		return txerr.New(txerr.AlreadyExists, "create_subvolume", path, nil)
	}
	return vfs.MkdirAll(f.fs, path, vfs.DirPerm)
}

func (f *fakeVolume) CreateSnapshot(src, dst string, _ bool) error {
	status, err := f.IsSubvolume(src)
	if err != nil {
		return err
	}
	if status != volume.Yes {
		return txerr.New(txerr.NotASubvolume, "create_snapshot", src, nil)
	}

	dstPath := dst
	if isDir, err := vfs.IsDir(f.fs, dst, true); err == nil && isDir {
		dstPath = filepath.Join(dst, filepath.Base(src))
	}
	if exists, _ := vfs.Exists(f.fs, dstPath); exists {
		return txerr.New(txerr.AlreadyExists, "create_snapshot", dstPath, nil)
	}
	return vfs.MkdirAll(f.fs, dstPath, vfs.DirPerm)
}

func (f *fakeVolume) DeleteSubvolume(path string) error {
	status, err := f.IsSubvolume(path)
	if err != nil {
		return err
	}
	if status != volume.Yes {
		return txerr.New(txerr.NotASubvolume, "delete_subvolume", path, nil)
	}
	return vfs.RemoveAll(f.fs, path)
}

// fakeLocker is an in-process stand-in for the SysV semaphore set: no
// real blocking, just call counters and optional injected errors so tests
// can assert on acquire/release pairing and failure handling.
type fakeLocker struct {
	writeErr  error
	readErr   error
	renameErr error

	acquireWriteN  int
	releaseWriteN  int
	acquireReadN   int
	releaseReadN   int
	acquireRenameN int
	releaseRenameN int
	closed         bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{}
}

func (f *fakeLocker) AcquireWrite() error {
	f.acquireWriteN++
	return f.writeErr
}

func (f *fakeLocker) ReleaseWrite() error {
	f.releaseWriteN++
	return nil
}

func (f *fakeLocker) AcquireRead() error {
	f.acquireReadN++
	return f.readErr
}

func (f *fakeLocker) ReleaseRead() error {
	f.releaseReadN++
	return nil
}

func (f *fakeLocker) AcquireRename() error {
	f.acquireRenameN++
	return f.renameErr
}

func (f *fakeLocker) ReleaseRename() error {
	f.releaseRenameN++
	return nil
}

func (f *fakeLocker) Close() error {
	f.closed = true
	return nil
}
