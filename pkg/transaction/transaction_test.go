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
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vishsahu/btrfstrans-go/pkg/log"
	sysmock "github.com/vishsahu/btrfstrans-go/pkg/sys/mock"
	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
	"github.com/vishsahu/btrfstrans-go/pkg/transaction"
	"github.com/vishsahu/btrfstrans-go/pkg/txerr"
	"github.com/vishsahu/btrfstrans-go/pkg/txstate"
)

const root = "/mnt/btrfs"

func newManager(fs vfs.FS, maxRead int) (*transaction.Manager, *fakeVolume, *fakeLocker) {
	vol := newFakeVolume(fs)
	locks := newFakeLocker()
	mgr := transaction.New(
		transaction.WithFS(fs),
		transaction.WithVolume(vol),
		transaction.WithLocker(locks),
		transaction.WithSignals(false),
		transaction.WithMaxRead(maxRead),
		transaction.WithLogger(log.New(log.WithDiscardAll())),
	)
	return mgr, vol, locks
}

var _ = Describe("Manager Init", Label("transaction"), func() {
	var fs vfs.FS
	var cleanup func()

	BeforeEach(func() {
		var err error
		fs, cleanup, err = sysmock.TestFS(map[string]any{"mnt/btrfs": map[string]any{}})
		Expect(err).NotTo(HaveOccurred())
	})
	AfterEach(func() { cleanup() })

	It("creates head and ro_snaps on a fresh root", func() {
		mgr, _, _ := newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Initialized))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "head"))
		Expect(exists).To(BeTrue())
		exists, _ = vfs.Exists(fs, filepath.Join(root, "ro_snaps"))
		Expect(exists).To(BeTrue())
	})

	It("accepts an already-clean root unchanged", func() {
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "head"), vfs.DirPerm)).To(Succeed())
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "ro_snaps"), vfs.DirPerm)).To(Succeed())

		mgr, _, _ := newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Initialized))
	})

	It("deletes a leftover wr_snap found alongside a clean head", func() {
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "head"), vfs.DirPerm)).To(Succeed())
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "ro_snaps"), vfs.DirPerm)).To(Succeed())
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "wr_snap"), vfs.DirPerm)).To(Succeed())

		mgr, _, _ := newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())

		exists, _ := vfs.Exists(fs, filepath.Join(root, "wr_snap"))
		Expect(exists).To(BeFalse())
	})

	It("recovers a mid-commit crash by renaming head_old back to head", func() {
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "head_old"), vfs.DirPerm)).To(Succeed())
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "ro_snaps"), vfs.DirPerm)).To(Succeed())

		mgr, _, _ := newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Initialized))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "head"))
		Expect(exists).To(BeTrue())
		exists, _ = vfs.Exists(fs, filepath.Join(root, "head_old"))
		Expect(exists).To(BeFalse())
	})

	It("fails Corrupt on an invalid on-disk combination", func() {
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "head"), vfs.DirPerm)).To(Succeed())
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "head_old"), vfs.DirPerm)).To(Succeed())
		Expect(vfs.MkdirAll(fs, filepath.Join(root, "ro_snaps"), vfs.DirPerm)).To(Succeed())

		mgr, _, _ := newManager(fs, 2)
		err := mgr.Init(context.Background(), root)
		Expect(txerr.Is(err, txerr.Corrupt)).To(BeTrue())
		Expect(mgr.State()).To(Equal(txstate.Error))
	})

	It("rejects a second Init once Initialized", func() {
		mgr, _, _ := newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())

		err := mgr.Init(context.Background(), root)
		Expect(txerr.Is(err, txerr.WrongState)).To(BeTrue())
	})
})

var _ = Describe("write transactions", Label("transaction"), func() {
	var fs vfs.FS
	var cleanup func()
	var mgr *transaction.Manager
	var locks *fakeLocker

	BeforeEach(func() {
		var err error
		fs, cleanup, err = sysmock.TestFS(map[string]any{"mnt/btrfs": map[string]any{}})
		Expect(err).NotTo(HaveOccurred())
		mgr, _, locks = newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())
	})
	AfterEach(func() { cleanup() })

	It("starts a write transaction by snapshotting head into wr_snap", func() {
		Expect(mgr.StartWrite()).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Write))
		Expect(locks.acquireWriteN).To(Equal(1))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "wr_snap"))
		Expect(exists).To(BeTrue())
	})

	It("commits by publishing wr_snap as the new head and deleting head_old", func() {
		Expect(mgr.StartWrite()).To(Succeed())
		Expect(mgr.Commit()).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Initialized))

		Expect(locks.acquireRenameN).To(Equal(1))
		Expect(locks.releaseRenameN).To(Equal(1))
		Expect(locks.releaseWriteN).To(Equal(1))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "wr_snap"))
		Expect(exists).To(BeFalse())
		exists, _ = vfs.Exists(fs, filepath.Join(root, "head_old"))
		Expect(exists).To(BeFalse())
		exists, _ = vfs.Exists(fs, filepath.Join(root, "head"))
		Expect(exists).To(BeTrue())
	})

	It("aborts by deleting wr_snap and releasing L_write", func() {
		Expect(mgr.StartWrite()).To(Succeed())
		Expect(mgr.Abort()).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Initialized))
		Expect(locks.releaseWriteN).To(Equal(1))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "wr_snap"))
		Expect(exists).To(BeFalse())
	})

	It("rejects commit outside a write transaction", func() {
		err := mgr.Commit()
		Expect(txerr.Is(err, txerr.WrongState)).To(BeTrue())
	})

	It("rejects starting a second write transaction", func() {
		Expect(mgr.StartWrite()).To(Succeed())
		err := mgr.StartWrite()
		Expect(txerr.Is(err, txerr.WrongState)).To(BeTrue())
	})
})

var _ = Describe("read-only transactions", Label("transaction"), func() {
	var fs vfs.FS
	var cleanup func()
	var mgr *transaction.Manager
	var locks *fakeLocker

	BeforeEach(func() {
		var err error
		fs, cleanup, err = sysmock.TestFS(map[string]any{"mnt/btrfs": map[string]any{}})
		Expect(err).NotTo(HaveOccurred())
		mgr, _, locks = newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())
	})
	AfterEach(func() { cleanup() })

	It("allocates the lowest free slot and snapshots head read-only", func() {
		Expect(mgr.StartRead()).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Read))
		Expect(locks.acquireReadN).To(Equal(1))
		Expect(locks.acquireRenameN).To(Equal(1))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "ro_snaps", "ro_snap_0"))
		Expect(exists).To(BeTrue())
	})

	It("stops by deleting the allocated slot and releasing L_ro", func() {
		Expect(mgr.StartRead()).To(Succeed())
		Expect(mgr.StopRead()).To(Succeed())
		Expect(mgr.State()).To(Equal(txstate.Initialized))
		Expect(locks.releaseReadN).To(Equal(1))

		exists, _ := vfs.Exists(fs, filepath.Join(root, "ro_snaps", "ro_snap_0"))
		Expect(exists).To(BeFalse())
	})

	It("rejects stop_read outside a read transaction", func() {
		err := mgr.StopRead()
		Expect(txerr.Is(err, txerr.WrongState)).To(BeTrue())
	})

	It("fails Unspecified when no read-only slot is free", func() {
		mgr1, _, _ := newManager(fs, 1)
		Expect(mgr1.Init(context.Background(), root)).To(Succeed())
		Expect(mgr1.StartRead()).To(Succeed())

		mgr2, _, locks2 := newManager(fs, 1)
		Expect(mgr2.Init(context.Background(), root)).To(Succeed())

		err := mgr2.StartRead()
		Expect(txerr.Is(err, txerr.Unspecified)).To(BeTrue())
		Expect(mgr2.State()).To(Equal(txstate.Error))
		Expect(locks2.releaseReadN).To(Equal(1))
	})
})

var _ = Describe("path redirection facade", Label("transaction"), func() {
	var fs vfs.FS
	var cleanup func()
	var mgr *transaction.Manager

	BeforeEach(func() {
		var err error
		fs, cleanup, err = sysmock.TestFS(map[string]any{"mnt/btrfs": map[string]any{}})
		Expect(err).NotTo(HaveOccurred())
		mgr, _, _ = newManager(fs, 2)
		Expect(mgr.Init(context.Background(), root)).To(Succeed())
	})
	AfterEach(func() { cleanup() })

	It("redirects Mkdir into wr_snap while writing", func() {
		Expect(mgr.StartWrite()).To(Succeed())
		Expect(mgr.Mkdir("etc", vfs.DirPerm)).To(Succeed())

		exists, _ := vfs.Exists(fs, filepath.Join(root, "wr_snap", "etc"))
		Expect(exists).To(BeTrue())
	})

	It("redirects Stat into the allocated slot while reading", func() {
		Expect(mgr.StartRead()).To(Succeed())

		_, err := mgr.Stat("nonexistent")
		Expect(txerr.Is(err, txerr.Access)).To(BeTrue())
	})

	It("rejects ., .., and / with InvalidName", func() {
		Expect(mgr.StartWrite()).To(Succeed())

		Expect(txerr.Is(mgr.Mkdir(".", vfs.DirPerm), txerr.InvalidName)).To(BeTrue())
		Expect(txerr.Is(mgr.Mkdir("..", vfs.DirPerm), txerr.InvalidName)).To(BeTrue())
		Expect(txerr.Is(mgr.Mkdir("/", vfs.DirPerm), txerr.InvalidName)).To(BeTrue())
	})

	It("rejects file ops outside any transaction with WrongState", func() {
		_, err := mgr.Stat("something")
		Expect(txerr.Is(err, txerr.WrongState)).To(BeTrue())
	})

	It("opens and writes a file under the active write snapshot", func() {
		Expect(mgr.StartWrite()).To(Succeed())

		f, err := mgr.Open("config", os.O_CREATE|os.O_WRONLY, vfs.FilePerm)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Write([]byte("hello"))
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Close()).To(Succeed())

		exists, _ := vfs.Exists(fs, filepath.Join(root, "wr_snap", "config"))
		Expect(exists).To(BeTrue())
	})
})
