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

package vfs

import (
	"os"
)

// MkdirAll creates path and any missing parents with the given permissions.
func MkdirAll(fs FS, path string, perm os.FileMode) error {
	return fs.MkdirAll(path, perm)
}

// RemoveAll removes path and any children it contains. It is not an error
// for path to not exist.
func RemoveAll(fs FS, path string) error {
	return fs.RemoveAll(path)
}

// Exists reports whether path exists. By default broken symlinks are
// reported as existing; pass followLink=true to require the link target to
// exist too.
func Exists(fs FS, path string, followLink ...bool) (bool, error) {
	var err error
	if len(followLink) > 0 && followLink[0] {
		_, err = fs.Stat(path)
	} else {
		_, err = fs.Lstat(path)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path is a directory. By default symlinks are not
// followed; pass followLink=true to resolve them first.
func IsDir(fs FS, path string, followLink ...bool) (bool, error) {
	var info os.FileInfo
	var err error
	if len(followLink) > 0 && followLink[0] {
		info, err = fs.Stat(path)
	} else {
		info, err = fs.Lstat(path)
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ReadLink returns the target of the symlink at path.
func ReadLink(fs FS, path string) (string, error) {
	return fs.Readlink(path)
}

// DirSize returns the total size, in bytes, of the files under path,
// skipping any of the given subpaths.
func DirSize(fs FS, path string, skip ...string) (int64, error) {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}

	var size int64
	var walk func(string) error
	walk = func(dir string) error {
		if skipSet[dir] {
			return nil
		}
		entries, err := readDirNames(fs, dir)
		if err != nil {
			return err
		}
		for _, name := range entries {
			full := dir + "/" + name
			if dir == "/" {
				full = "/" + name
			}
			info, err := fs.Lstat(full)
			if err != nil {
				return err
			}
			if info.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			size += info.Size()
		}
		return nil
	}
	if err := walk(path); err != nil {
		return 0, err
	}
	return size, nil
}

// DirSizeMB is DirSize rounded up to the nearest megabyte.
func DirSizeMB(fs FS, path string, skip ...string) (uint, error) {
	size, err := DirSize(fs, path, skip...)
	if err != nil {
		return 0, err
	}
	const mb = 1024 * 1024
	return uint((size + mb - 1) / mb), nil
}

func readDirNames(fs FS, dir string) ([]string, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}
