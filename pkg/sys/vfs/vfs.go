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

// Package vfs re-exports the filesystem abstraction every package in this
// module talks to, so production code and vfst-backed tests share a single
// interface.
package vfs

import (
	"os"

	gvfs "github.com/twpayne/go-vfs/v4"
)

// FS is the filesystem every component in this module is built against.
type FS = gvfs.FS

// File is the file handle type returned by FS.
type File = gvfs.File

const (
	// DirPerm is the permission bits used for directories this module creates.
	DirPerm os.FileMode = 0o755
	// FilePerm is the permission bits used for regular files this module creates.
	FilePerm os.FileMode = 0o644
)

// New returns the real, OS-backed filesystem.
func New() FS {
	return gvfs.OSFS
}

// OSFS returns the real, OS-backed filesystem. Exposed separately from New
// so tests can request it explicitly alongside a vfst.TestFS.
func OSFS() FS {
	return gvfs.OSFS
}
