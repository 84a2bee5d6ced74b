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

// Package txerr defines the error taxonomy shared by every component of the
// transaction manager. Every returned error carries a Kind so callers can
// branch on cause without string matching, and a stack trace via
// github.com/pkg/errors so the origin of a failure survives unwrapping.
package txerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the cause of an Error.
type Kind int

const (
	// Unspecified is the residual catch-all, e.g. no free read slot.
	Unspecified Kind = iota
	// Access means a needed path could not be opened or stat'd.
	Access
	// NotASubvolume means a path exists but is not a subvolume where one is required.
	NotASubvolume
	// AlreadyExists means a create target already exists.
	AlreadyExists
	// ExistsAndNotADir means a destination collides with a non-directory.
	ExistsAndNotADir
	// IncorrectName covers generic name validation failures.
	IncorrectName
	// NameTooLong means a name exceeds the filesystem's maximum.
	NameTooLong
	// InvalidName means a name is empty, ".", "..", or contains a separator.
	InvalidName
	// Rename means a rename syscall failed; commit cannot proceed atomically.
	Rename
	// Delete means a subvolume deletion failed.
	Delete
	// WrongState means the operation was attempted from a non-permitting state.
	WrongState
	// Corrupt means the on-disk layout does not satisfy the invariants at init.
	Corrupt
)

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case NotASubvolume:
		return "not-a-subvolume"
	case AlreadyExists:
		return "already-exists"
	case ExistsAndNotADir:
		return "exists-and-not-a-dir"
	case IncorrectName:
		return "incorrect-name"
	case NameTooLong:
		return "name-too-long"
	case InvalidName:
		return "invalid-name"
	case Rename:
		return "rename"
	case Delete:
		return "delete"
	case WrongState:
		return "wrong-state"
	case Corrupt:
		return "corrupt"
	default:
		return "unspecified"
	}
}

// Error is a txerr.Kind paired with the operation and path it occurred on.
type Error struct {
	Kind      Kind
	Operation string
	Path      string
	cause     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Operation, e.Kind, e.Path, e.cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error wrapped with a stack trace rooted at the call site.
func New(kind Kind, op, path string, cause error) *Error {
	if cause == nil {
		cause = errors.New(kind.String())
	}
	return &Error{
		Kind:      kind,
		Operation: op,
		Path:      path,
		cause:     errors.WithStack(cause),
	}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
