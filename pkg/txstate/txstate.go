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

// Package txstate implements the transaction manager's process-local state
// machine: five states, a fixed table of legal transitions, and a sticky
// terminal Error state.
package txstate

import "github.com/vishsahu/btrfstrans-go/pkg/txerr"

// State is one of the five process-local states a Machine can be in.
type State int

const (
	Uninitialized State = iota
	Initialized
	Write
	Read
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Write:
		return "write"
	case Read:
		return "read"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Operation is one of the calls that may drive a state transition.
type Operation int

const (
	InitOK Operation = iota
	InitCorrupt
	StartWrite
	StartRead
	CommitOK
	AbortOK
	StopReadOK
	InternalFailure
)

var transitions = map[State]map[Operation]State{
	Uninitialized: {
		InitOK:      Initialized,
		InitCorrupt: Error,
	},
	Initialized: {
		StartWrite: Write,
		StartRead:  Read,
	},
	Write: {
		CommitOK:        Initialized,
		AbortOK:         Initialized,
		InternalFailure: Error,
	},
	Read: {
		StopReadOK:      Initialized,
		InternalFailure: Error,
	},
}

// Machine is a single process-local state variable. It is a plain value,
// not a package-level global: a Manager owns one Machine per instance.
type Machine struct {
	state State
}

// New returns a Machine starting in Uninitialized.
func New() *Machine {
	return &Machine{state: Uninitialized}
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.state
}

// Apply attempts operation op from the machine's current state. On a legal
// transition it updates the state and returns nil. On an illegal one
// (including any call once the machine is in Error) it leaves the state
// unchanged and returns a WrongState error — the machine has no side
// effects of its own beyond the in-memory state field.
func (m *Machine) Apply(op Operation) error {
	next, ok := transitions[m.state][op]
	if !ok {
		return txerr.New(txerr.WrongState, "apply", "", nil)
	}
	m.state = next
	return nil
}

// Fail forces the machine into the terminal Error state, used when a
// caller detects an internal failure that Apply's own table doesn't cover
// for the current state (e.g. a failure observed before any operation-scoped
// transition applies).
func (m *Machine) Fail() {
	m.state = Error
}
