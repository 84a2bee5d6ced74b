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

import (
	"os"
	"path/filepath"

	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
	"github.com/vishsahu/btrfstrans-go/pkg/txerr"
	"github.com/vishsahu/btrfstrans-go/pkg/txstate"
)

// activeRoot returns the snapshot root relative file operations are
// currently redirected into: wr_snap while writing, the allocated
// ro_snap_{i} slot while reading.
func (m *Manager) activeRoot() (string, error) {
	switch m.state.State() {
	case txstate.Write:
		return m.layout.WrSnap(), nil
	case txstate.Read:
		return m.readSlotPath, nil
	default:
		return "", txerr.New(txerr.WrongState, "redirect", "", nil)
	}
}

// redirect rewrites a client-supplied relative name into a path under the
// currently active snapshot.
func (m *Manager) redirect(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", txerr.New(txerr.InvalidName, "redirect", name, nil)
	}

	root, err := m.activeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// Open redirects name into the active snapshot and opens it with the
// given flag and permissions.
func (m *Manager) Open(name string, flag int, perm os.FileMode) (vfs.File, error) {
	path, err := m.redirect(name)
	if err != nil {
		return nil, err
	}
	f, err := m.fs.OpenFile(path, flag, perm)
	if err != nil {
		return nil, txerr.New(txerr.Access, "open", path, err)
	}
	return f, nil
}

// Mkdir redirects name into the active snapshot and creates it as a
// directory.
func (m *Manager) Mkdir(name string, perm os.FileMode) error {
	path, err := m.redirect(name)
	if err != nil {
		return err
	}
	if err := m.fs.Mkdir(path, perm); err != nil {
		return txerr.New(txerr.Access, "mkdir", path, err)
	}
	return nil
}

// Rmdir redirects name into the active snapshot and removes it.
func (m *Manager) Rmdir(name string) error {
	path, err := m.redirect(name)
	if err != nil {
		return err
	}
	if err := m.fs.Remove(path); err != nil {
		return txerr.New(txerr.Access, "rmdir", path, err)
	}
	return nil
}

// Unlink redirects name into the active snapshot and removes it.
func (m *Manager) Unlink(name string) error {
	path, err := m.redirect(name)
	if err != nil {
		return err
	}
	if err := m.fs.Remove(path); err != nil {
		return txerr.New(txerr.Access, "unlink", path, err)
	}
	return nil
}

// Stat redirects name into the active snapshot and stats it.
func (m *Manager) Stat(name string) (os.FileInfo, error) {
	path, err := m.redirect(name)
	if err != nil {
		return nil, err
	}
	info, err := m.fs.Stat(path)
	if err != nil {
		return nil, txerr.New(txerr.Access, "stat", path, err)
	}
	return info, nil
}
