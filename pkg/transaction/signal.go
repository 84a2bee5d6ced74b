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
	"os/signal"
	"syscall"

	"github.com/vishsahu/btrfstrans-go/pkg/txstate"
)

// catchableSignals is the subset of termination signals Go can safely
// intercept and handle from ordinary goroutine context. SIGSEGV, SIGILL,
// and SIGFPE are delivered by the Go runtime as fatal panics rather than
// catchable signals, so they are not in this set: a process that
// segfaults mid-transaction relies on crash recovery at the next Init.
var catchableSignals = []os.Signal{
	syscall.SIGABRT,
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// installSignalHandler starts a goroutine that, on receipt of one of
// catchableSignals, drives the in-progress transaction (if any) to its
// terminal cleanup path by calling the ordinary Abort/StopRead methods
// from normal goroutine context, then exits the process.
func (m *Manager) installSignalHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, catchableSignals...)

	go func() {
		sig := <-ch
		m.logger.Warn("received %v, cleaning up in-progress transaction", sig)

		switch m.state.State() {
		case txstate.Read:
			if err := m.StopRead(); err != nil {
				m.logger.Error("stop_read during signal cleanup: %v", err)
			}
		case txstate.Write:
			if err := m.Abort(); err != nil {
				m.logger.Error("abort during signal cleanup: %v", err)
			}
		}

		os.Exit(signalExitCode(sig))
	}()
}

// signalExitCode follows the shell convention of 128+signal number.
func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
