/*
Copyright © 2022-2025 SUSE LLC
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

package vfs_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sysmock "github.com/vishsahu/btrfstrans-go/pkg/sys/mock"
	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
)

var _ = Describe("FS", Label("fs"), func() {
	var tfs vfs.FS
	var cleanup func()
	var err error

	BeforeEach(func() {
		tfs, cleanup, err = sysmock.TestFS(nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(vfs.MkdirAll(tfs, "/folder/subfolder", vfs.DirPerm)).To(Succeed())

		f, err := tfs.Create("/folder/file")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(f.Truncate(1024)).To(Succeed())

		f, err = tfs.Create("/folder/subfolder/file1")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(f.Truncate(2048)).To(Succeed())
	})

	AfterEach(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	Describe("DirSize", func() {
		BeforeEach(func() {
			f, err := tfs.Create("/folder/subfolder/file2")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(f.Truncate(1 * 1024 * 1024)).To(Succeed())
		})

		It("returns the expected size of a test folder", func() {
			size, err := vfs.DirSize(tfs, "/folder")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(size).To(Equal(int64(1*1024*1024 + 2048 + 1024)))

			usize, err := vfs.DirSizeMB(tfs, "/folder")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(usize).To(Equal(uint(2)))
		})

		It("returns the size of a test folder when skipping subdirectories", func() {
			size, err := vfs.DirSize(tfs, "/folder", "/folder/subfolder")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(size).To(Equal(int64(1024)))
		})
	})

	Describe("IsDir", func() {
		It("discriminates directories and files", func() {
			Expect(tfs.Symlink("subfolder", "/folder/linkToSubfolder")).To(Succeed())

			dir, err := vfs.IsDir(tfs, "/folder")
			Expect(dir).To(BeTrue())
			Expect(err).ToNot(HaveOccurred())

			dir, err = vfs.IsDir(tfs, "/folder/subfolder/file1")
			Expect(dir).To(BeFalse())
			Expect(err).ToNot(HaveOccurred())

			// does not follow symlinks by default
			dir, err = vfs.IsDir(tfs, "/folder/linkToSubfolder")
			Expect(dir).To(BeFalse())
			Expect(err).ToNot(HaveOccurred())

			// follows symlinks when asked
			dir, err = vfs.IsDir(tfs, "/folder/linkToSubfolder", true)
			Expect(dir).To(BeTrue())
			Expect(err).ToNot(HaveOccurred())

			_, err = vfs.IsDir(tfs, "/nonexisting")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RemoveAll", func() {
		It("removes nested files and folders", func() {
			Expect(vfs.RemoveAll(tfs, "/folder")).To(Succeed())
			exists, err := vfs.Exists(tfs, "/folder/subfolder")
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("does not fail for nonexisting paths", func() {
			Expect(vfs.RemoveAll(tfs, "/non-existing")).To(Succeed())
		})
	})

	Describe("Exists", func() {
		It("checks file existence, including broken symlinks", func() {
			Expect(tfs.Symlink("subfolder", "/folder/linkToSubfolder")).To(Succeed())
			Expect(tfs.Symlink("nonexisting", "/folder/brokenlink")).To(Succeed())

			exists, err := vfs.Exists(tfs, "/folder/subfolder")
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = vfs.Exists(tfs, "/folder/brokenlink")
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = vfs.Exists(tfs, "/folder/brokenlink", true)
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("ReadLink", func() {
		It("reads symlink targets", func() {
			Expect(tfs.Symlink("subfolder", "/folder/linkToSubfolder")).To(Succeed())

			target, err := vfs.ReadLink(tfs, "/folder/linkToSubfolder")
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal("subfolder"))

			_, err = vfs.ReadLink(tfs, "/folder/subfolder")
			Expect(err).To(HaveOccurred())
		})
	})
})
