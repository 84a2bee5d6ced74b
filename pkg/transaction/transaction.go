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

// Package transaction implements the transaction manager: the component
// that drives the on-disk layout, the three named locks, and the
// process-local state machine through init, write, and read-only
// transactions, and redirects client file operations into whichever
// snapshot is currently active.
package transaction

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/vishsahu/btrfstrans-go/pkg/cleanstack"
	"github.com/vishsahu/btrfstrans-go/pkg/layout"
	"github.com/vishsahu/btrfstrans-go/pkg/lock"
	"github.com/vishsahu/btrfstrans-go/pkg/log"
	"github.com/vishsahu/btrfstrans-go/pkg/sys"
	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
	"github.com/vishsahu/btrfstrans-go/pkg/txerr"
	"github.com/vishsahu/btrfstrans-go/pkg/txstate"
	"github.com/vishsahu/btrfstrans-go/pkg/volume"
)

// DefaultMaxRead is the number of concurrent read-only transaction slots
// a Manager admits when WithMaxRead is not given.
const DefaultMaxRead = 8

// Manager owns one managed root: its layout, its state machine, and the
// Volume/Locker it drives transactions through.
type Manager struct {
	layout  *layout.Layout
	state   *txstate.Machine
	vol     Volume
	locks   Locker
	fs      vfs.FS
	logger  log.Logger
	maxRead int
	signals bool

	readSlotIdx  int
	readSlotPath string

	// txID correlates every log line emitted by one write or read-only
	// transaction, the way a journal entry's request ID ties its log lines
	// together across retries.
	txID string
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithFS overrides the filesystem the manager operates against. Defaults
// to the real OS filesystem; tests pass a vfst.TestFS.
func WithFS(fs vfs.FS) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithLogger overrides the manager's logger.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithVolume overrides the Volume adapter. Defaults to a real
// Btrfs-backed volume.Adapter; tests pass a fake.
func WithVolume(vol Volume) Option {
	return func(m *Manager) { m.vol = vol }
}

// WithLocker overrides the Locker. If unset, Init opens a lock.Set derived
// from the managed root the first time it runs.
func WithLocker(locks Locker) Option {
	return func(m *Manager) { m.locks = locks }
}

// WithMaxRead sets N, the number of concurrent read-only transaction
// slots. Defaults to DefaultMaxRead.
func WithMaxRead(n int) Option {
	return func(m *Manager) { m.maxRead = n }
}

// WithSignals controls whether Init installs the signal-driven cleanup
// goroutine. Defaults to true; tests that don't want a background
// goroutine touching process-wide signal state pass false.
func WithSignals(enabled bool) Option {
	return func(m *Manager) { m.signals = enabled }
}

// WithSystem takes the filesystem and logger from an already-built
// *sys.System instead of setting each individually with WithFS/WithLogger.
// It's the option command-line entry points reach for, since they build one
// System per process for every package that needs ambient access.
func WithSystem(s *sys.System) Option {
	return func(m *Manager) {
		m.fs = s.FS()
		m.logger = s.Logger()
	}
}

// New returns a Manager in the Uninitialized state.
func New(opts ...Option) *Manager {
	m := &Manager{
		state:       txstate.New(),
		fs:          vfs.New(),
		logger:      log.New(),
		maxRead:     DefaultMaxRead,
		signals:     true,
		readSlotIdx: -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.vol == nil {
		m.vol = volume.New()
	}
	return m
}

// State returns the manager's current process-local state.
func (m *Manager) State() txstate.State {
	return m.state.State()
}

// Root returns the managed root path, empty until Init succeeds.
func (m *Manager) Root() string {
	if m.layout == nil {
		return ""
	}
	return m.layout.Root()
}

// Close releases this process's handles on the manager's locks. It does
// not affect on-disk state and is safe to call regardless of the
// manager's state.
func (m *Manager) Close() error {
	if m.locks == nil {
		return nil
	}
	return m.locks.Close()
}

// Init brings a managed root from whatever state the filesystem is in to
// Initialized, running the crash-recovery case analysis described in the
// on-disk layout. It fails WrongState if the manager is not Uninitialized,
// and drives itself to the terminal Error state on any layout invariant
// violation it cannot recover from.
func (m *Manager) Init(ctx context.Context, root string) error {
	if m.state.State() != txstate.Uninitialized {
		return txerr.New(txerr.WrongState, "init", root, nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lay, err := layout.New(root, m.maxRead)
	if err != nil {
		return txerr.New(txerr.Corrupt, "init", root, err)
	}
	m.layout = lay

	if m.locks == nil {
		locks, err := lock.Open(lay.Root(), lay.MaxRead())
		if err != nil {
			_ = m.state.Apply(txstate.InitCorrupt)
			return txerr.New(txerr.Access, "init", root, err)
		}
		m.locks = locks
	}

	if m.signals {
		m.installSignalHandler()
	}

	headExists, err := vfs.Exists(m.fs, lay.Head())
	if err != nil {
		return m.failInit(root, txerr.New(txerr.Access, "init", lay.Head(), err))
	}
	headOldExists, err := vfs.Exists(m.fs, lay.HeadOld())
	if err != nil {
		return m.failInit(root, txerr.New(txerr.Access, "init", lay.HeadOld(), err))
	}
	roSnapsExists, err := vfs.Exists(m.fs, lay.ROSnaps())
	if err != nil {
		return m.failInit(root, txerr.New(txerr.Access, "init", lay.ROSnaps(), err))
	}

	switch {
	case !headExists && !headOldExists && !roSnapsExists:
		if err := m.vol.CreateSubvolume(lay.Head()); err != nil {
			return m.failInit(root, err)
		}
		if err := m.vol.CreateSubvolume(lay.ROSnaps()); err != nil {
			return m.failInit(root, err)
		}
	case headExists && roSnapsExists && !headOldExists:
		if err := m.cleanupLeftoverWrSnap(); err != nil {
			return m.failInit(root, err)
		}
	case headOldExists && roSnapsExists && !headExists:
		if err := m.cleanupLeftoverWrSnap(); err != nil {
			return m.failInit(root, err)
		}
		if err := m.fs.Rename(lay.HeadOld(), lay.Head()); err != nil {
			return m.failInit(root, txerr.New(txerr.Rename, "init", lay.HeadOld(), err))
		}
	default:
		return m.failInit(root, txerr.New(txerr.Corrupt, "init", root, nil))
	}

	return m.state.Apply(txstate.InitOK)
}

// failInit drives the state machine to the terminal Error state via the
// InitCorrupt transition and returns cause.
func (m *Manager) failInit(root string, cause error) error {
	_ = m.state.Apply(txstate.InitCorrupt)
	m.logger.Error("init %s: %v", root, cause)
	return cause
}

// cleanupLeftoverWrSnap implements Open Question O1: a wr_snap found
// during init (whether alongside a clean head or during mid-commit
// recovery) indicates a crashed write transaction and is deleted rather
// than treated as corruption.
func (m *Manager) cleanupLeftoverWrSnap() error {
	exists, err := vfs.Exists(m.fs, m.layout.WrSnap())
	if err != nil {
		return txerr.New(txerr.Access, "init", m.layout.WrSnap(), err)
	}
	if !exists {
		return nil
	}
	if err := m.vol.DeleteSubvolume(m.layout.WrSnap()); err != nil {
		return txerr.New(txerr.Delete, "init", m.layout.WrSnap(), err)
	}
	m.logger.Warn("deleted leftover wr_snap found during init at %s", m.layout.WrSnap())
	return nil
}

// StartWrite begins a write transaction: it acquires L_write (blocking
// indefinitely) and snapshots head into wr_snap as writable. Per Open
// Question O3, it re-checks that head is still a subvolume after
// acquiring L_write, since an external tool could have removed it between
// Init and this call.
func (m *Manager) StartWrite() error {
	if m.state.State() != txstate.Initialized {
		return txerr.New(txerr.WrongState, "start_write", "", nil)
	}

	if err := m.locks.AcquireWrite(); err != nil {
		return txerr.New(txerr.Access, "start_write", m.layout.Root(), err)
	}

	m.txID = uuid.NewString()
	m.logger.Info("tx=%s start_write: acquired write lock, snapshotting %s", m.txID, m.layout.Head())

	// rollback only unwinds L_write and the state machine: on any failure
	// below, nothing has been created on disk yet.
	rollback := cleanstack.NewCleanStack()
	rollback.PushErrorOnly(func() error {
		_ = m.state.Apply(txstate.StartWrite)
		_ = m.state.Apply(txstate.InternalFailure)
		if err := m.locks.ReleaseWrite(); err != nil {
			m.logger.Error("releasing write lock after failed start_write: %v", err)
		}
		return nil
	})

	err := func() error {
		status, err := m.vol.IsSubvolume(m.layout.Head())
		if err != nil {
			return err
		}
		if status != volume.Yes {
			return txerr.New(txerr.Corrupt, "start_write", m.layout.Head(), nil)
		}
		return m.vol.CreateSnapshot(m.layout.Head(), m.layout.WrSnap(), false)
	}()

	if err := rollback.Cleanup(err); err != nil {
		return err
	}

	return m.state.Apply(txstate.StartWrite)
}

// Commit implements the seven-step atomic publish protocol: acquire
// L_rename, rename head to head_old, sync, rename wr_snap to head
// (publishing the new tree), release L_rename, delete head_old, release
// L_write. A failure to delete head_old after the tree is published is
// reported as a Delete error but does not move the state to Error. Init
// does not delete such a leftover: while head_old remains beside head, a
// later Init fails Corrupt.
func (m *Manager) Commit() error {
	if m.state.State() != txstate.Write {
		return txerr.New(txerr.WrongState, "commit", "", nil)
	}

	if err := m.locks.AcquireRename(); err != nil {
		_ = m.state.Apply(txstate.InternalFailure)
		return txerr.New(txerr.Access, "commit", m.layout.Root(), err)
	}

	if err := m.fs.Rename(m.layout.Head(), m.layout.HeadOld()); err != nil {
		if relErr := m.locks.ReleaseRename(); relErr != nil {
			m.logger.Error("releasing rename lock after failed commit: %v", relErr)
		}
		_ = m.state.Apply(txstate.InternalFailure)
		return txerr.New(txerr.Rename, "commit", m.layout.Head(), err)
	}

	unix.Sync()

	if err := m.fs.Rename(m.layout.WrSnap(), m.layout.Head()); err != nil {
		// head is now head_old and nothing replaced it: the next Init's
		// mid-commit recovery branch renames head_old back to head.
		if relErr := m.locks.ReleaseRename(); relErr != nil {
			m.logger.Error("releasing rename lock after failed commit: %v", relErr)
		}
		_ = m.state.Apply(txstate.InternalFailure)
		return txerr.New(txerr.Rename, "commit", m.layout.WrSnap(), err)
	}

	if err := m.locks.ReleaseRename(); err != nil {
		m.logger.Error("releasing rename lock after publishing new head: %v", err)
	}

	if err := m.state.Apply(txstate.CommitOK); err != nil {
		return err
	}

	if err := m.vol.DeleteSubvolume(m.layout.HeadOld()); err != nil {
		m.logger.Error("deleting head_old after commit: %v", err)
		if relErr := m.locks.ReleaseWrite(); relErr != nil {
			m.logger.Error("releasing write lock after commit: %v", relErr)
		}
		return txerr.New(txerr.Delete, "commit", m.layout.HeadOld(), err)
	}

	if err := m.locks.ReleaseWrite(); err != nil {
		m.logger.Error("releasing write lock after commit: %v", err)
	}
	m.logger.Info("tx=%s commit: published %s", m.txID, m.layout.Head())
	m.txID = ""
	return nil
}

// Abort discards the open write transaction: it deletes wr_snap and
// releases L_write. A failed deletion is reported as a Delete error but
// the manager still returns to Initialized; the leftover wr_snap is
// cleaned up at the next Init (O1).
func (m *Manager) Abort() error {
	if m.state.State() != txstate.Write {
		return txerr.New(txerr.WrongState, "abort", "", nil)
	}

	var deleteErr error
	if err := m.vol.DeleteSubvolume(m.layout.WrSnap()); err != nil {
		deleteErr = txerr.New(txerr.Delete, "abort", m.layout.WrSnap(), err)
	}

	if err := m.locks.ReleaseWrite(); err != nil {
		m.logger.Error("releasing write lock after abort: %v", err)
	}

	if stateErr := m.state.Apply(txstate.AbortOK); stateErr != nil {
		return stateErr
	}
	m.logger.Info("tx=%s abort: discarded %s", m.txID, m.layout.WrSnap())
	m.txID = ""
	return deleteErr
}

// StartRead begins a read-only transaction: it acquires L_ro (bounded to
// N concurrent readers), then L_rename to serialize the snapshot against
// any in-progress commit's rename window, allocates the lowest free
// ro_snap_{i} slot, and snapshots head into it read-only.
func (m *Manager) StartRead() error {
	if m.state.State() != txstate.Initialized {
		return txerr.New(txerr.WrongState, "start_read", "", nil)
	}

	if err := m.locks.AcquireRead(); err != nil {
		return txerr.New(txerr.Access, "start_read", m.layout.Root(), err)
	}

	rollback := cleanstack.NewCleanStack()
	rollback.PushErrorOnly(func() error {
		_ = m.state.Apply(txstate.StartRead)
		_ = m.state.Apply(txstate.InternalFailure)
		if err := m.locks.ReleaseRead(); err != nil {
			m.logger.Error("releasing read lock after failed start_read: %v", err)
		}
		return nil
	})

	if err := m.locks.AcquireRename(); err != nil {
		return rollback.Cleanup(txerr.New(txerr.Access, "start_read", m.layout.Root(), err))
	}
	// AcquireRename succeeded: L_rename must also unwind on any later failure.
	rollback.PushErrorOnly(func() error {
		if err := m.locks.ReleaseRename(); err != nil {
			m.logger.Error("releasing rename lock after failed start_read: %v", err)
		}
		return nil
	})

	idx, path, err := m.layout.AllocateSlot(m.fs)
	if err != nil {
		return rollback.Cleanup(txerr.New(txerr.Unspecified, "start_read", m.layout.ROSnaps(), err))
	}

	if err := m.vol.CreateSnapshot(m.layout.Head(), path, true); err != nil {
		return rollback.Cleanup(err)
	}

	if err := m.locks.ReleaseRename(); err != nil {
		m.logger.Error("releasing rename lock after read-tx start: %v", err)
	}

	m.readSlotIdx = idx
	m.readSlotPath = path
	m.txID = uuid.NewString()
	m.logger.Info("tx=%s start_read: snapshotted %s into slot %d", m.txID, m.layout.Head(), idx)
	return m.state.Apply(txstate.StartRead)
}

// StopRead ends the open read-only transaction: it deletes the allocated
// snapshot slot and releases L_ro. A failed deletion is reported as a
// Delete error but the manager still returns to Initialized.
func (m *Manager) StopRead() error {
	if m.state.State() != txstate.Read {
		return txerr.New(txerr.WrongState, "stop_read", "", nil)
	}

	var deleteErr error
	if err := m.vol.DeleteSubvolume(m.readSlotPath); err != nil {
		deleteErr = txerr.New(txerr.Delete, "stop_read", m.readSlotPath, err)
	}

	if err := m.locks.ReleaseRead(); err != nil {
		m.logger.Error("releasing read lock after stop_read: %v", err)
	}

	m.logger.Info("tx=%s stop_read: released slot %d", m.txID, m.readSlotIdx)
	m.readSlotIdx = -1
	m.readSlotPath = ""
	m.txID = ""

	if stateErr := m.state.Apply(txstate.StopReadOK); stateErr != nil {
		return stateErr
	}
	return deleteErr
}
