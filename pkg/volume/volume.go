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

// Package volume is the Volume Adapter: the only package in this module
// that knows about Btrfs ioctls. It is a thin, synchronous façade over four
// primitives consumed by the transaction manager, implemented without cgo
// via raw golang.org/x/sys/unix syscalls.
package volume

import (
	"errors"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"

	"github.com/vishsahu/btrfstrans-go/pkg/txerr"
)

var (
	errInvalidName = errors.New("invalid name")
	errNameTooLong = errors.New("name too long")
)

// Status is the result of IsSubvolume.
type Status int

const (
	No Status = iota
	Yes
	Inaccessible
)

// Adapter implements the four Volume Adapter operations against a real
// Btrfs-backed filesystem.
type Adapter struct {
	// maxDeleteAttempts bounds the EAGAIN retry loop on an asynchronous
	// subvolume deletion. Overridable in tests; zero means the default.
	maxDeleteAttempts uint64
}

// New returns an Adapter with the default delete-retry budget.
func New() *Adapter {
	return &Adapter{}
}

const defaultMaxDeleteAttempts = 10

func (a *Adapter) deleteAttempts() uint64 {
	if a.maxDeleteAttempts > 0 {
		return a.maxDeleteAttempts
	}
	return defaultMaxDeleteAttempts
}

// IsSubvolume mirrors the C test_issubvolume: stat the path and check that
// its inode is BTRFS_FIRST_FREE_OBJECTID and it is a directory.
func (a *Adapter) IsSubvolume(path string) (Status, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if os.IsNotExist(err) {
			return No, nil
		}
		return Inaccessible, txerr.New(txerr.Access, "is_subvolume", path, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return No, nil
	}
	if st.Ino != btrfsFirstFreeObjectID {
		return No, nil
	}
	return Yes, nil
}

// CreateSubvolume creates a new, empty subvolume at path. path must not
// already exist; its parent must exist and be accessible.
func (a *Adapter) CreateSubvolume(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return txerr.New(txerr.AlreadyExists, "create_subvolume", path, nil)
	}

	name := filepath.Base(path)
	if err := validateName(name); err != nil {
		return nameErr(err, "create_subvolume", name)
	}

	parent := filepath.Dir(path)
	dir, err := os.Open(parent)
	if err != nil {
		return txerr.New(txerr.Access, "create_subvolume", parent, err)
	}
	defer dir.Close()

	var args btrfsIoctlVolArgs
	setCName(args.Name[:], name)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, dir.Fd(), btrfsIoctlSubvolCreate, uintptr(unsafe.Pointer(&args)))
	if errno != 0 {
		return txerr.New(txerr.Access, "create_subvolume", path, errno)
	}
	return nil
}

// CreateSnapshot creates a copy-on-write snapshot of the subvolume at src,
// at dst. dst may be an existing directory (the snapshot is named after
// src's basename) or a non-existent path whose parent exists (the
// snapshot is named after dst's basename).
func (a *Adapter) CreateSnapshot(src, dst string, readonly bool) error {
	srcStatus, err := a.IsSubvolume(src)
	if err != nil {
		return err
	}
	if srcStatus != Yes {
		return txerr.New(txerr.NotASubvolume, "create_snapshot", src, nil)
	}

	var name, dstDir string
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		name = filepath.Base(src)
		dstDir = dst
	} else if err != nil && !os.IsNotExist(err) {
		return txerr.New(txerr.Access, "create_snapshot", dst, err)
	} else if err == nil {
		return txerr.New(txerr.ExistsAndNotADir, "create_snapshot", dst, nil)
	} else {
		name = filepath.Base(dst)
		dstDir = filepath.Dir(dst)
	}

	if err := validateName(name); err != nil {
		return nameErr(err, "create_snapshot", name)
	}

	fddst, err := os.Open(dstDir)
	if err != nil {
		return txerr.New(txerr.Access, "create_snapshot", dstDir, err)
	}
	defer fddst.Close()

	fd, err := os.Open(src)
	if err != nil {
		return txerr.New(txerr.Access, "create_snapshot", src, err)
	}
	defer fd.Close()

	var args btrfsIoctlVolArgsV2
	args.FD = int64(fd.Fd())
	if readonly {
		args.Flags |= btrfsSubvolRDOnly
	}
	setCName(args.Name[:], name)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fddst.Fd(), btrfsIoctlSnapCreateV2, uintptr(unsafe.Pointer(&args)))
	if errno != 0 {
		return txerr.New(txerr.Access, "create_snapshot", dst, errno)
	}
	return nil
}

// DeleteSubvolume destroys the subvolume at path. Destruction is
// irrevocable. Btrfs reaps a subvolume's extents asynchronously at the
// kernel level, which can surface as a transient EAGAIN while a prior
// generation is still being freed; that is retried with bounded backoff
// rather than surfaced immediately as a Delete error.
func (a *Adapter) DeleteSubvolume(path string) error {
	status, err := a.IsSubvolume(path)
	if err != nil {
		return err
	}
	if status != Yes {
		return txerr.New(txerr.NotASubvolume, "delete_subvolume", path, nil)
	}

	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return txerr.New(txerr.Access, "delete_subvolume", path, err)
	}
	name := filepath.Base(real)
	if err := validateName(name); err != nil {
		return nameErr(err, "delete_subvolume", name)
	}

	dir, err := os.Open(filepath.Dir(real))
	if err != nil {
		return txerr.New(txerr.Access, "delete_subvolume", path, err)
	}
	defer dir.Close()

	var args btrfsIoctlVolArgs
	setCName(args.Name[:], name)

	attempt := func() error {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, dir.Fd(), btrfsIoctlSnapDestroy, uintptr(unsafe.Pointer(&args)))
		if errno == 0 {
			return nil
		}
		if errno == unix.EAGAIN {
			return errno
		}
		return backoff.Permanent(errno)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.deleteAttempts())
	if err := backoff.Retry(attempt, policy); err != nil {
		return txerr.New(txerr.Delete, "delete_subvolume", path, err)
	}
	return nil
}

func nameErr(sentinel error, op, name string) error {
	switch {
	case errors.Is(sentinel, errNameTooLong):
		return txerr.New(txerr.NameTooLong, op, name, sentinel)
	default:
		return txerr.New(txerr.InvalidName, op, name, sentinel)
	}
}
