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

package action

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// StartWrite begins a write transaction on the managed root.
func StartWrite(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return err
	}
	if err := mgr.StartWrite(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Writer, "write transaction started")
	return nil
}

// Commit publishes the open write transaction as the new head.
func Commit(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return err
	}
	if err := mgr.Commit(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Writer, "committed")
	return nil
}

// Abort discards the open write transaction.
func Abort(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return err
	}
	if err := mgr.Abort(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Writer, "aborted")
	return nil
}

// StartRead begins a read-only transaction against the current head.
func StartRead(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return err
	}
	if err := mgr.StartRead(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Writer, "read transaction started")
	return nil
}

// StopRead ends the open read-only transaction.
func StopRead(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return err
	}
	if err := mgr.StopRead(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Writer, "read transaction stopped")
	return nil
}

// List renders the committed tree's size and every occupied read-only
// snapshot slot.
func List(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return err
	}

	headMB, err := mgr.HeadSizeMB()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Writer, "head: %s\n", units.BytesSize(float64(headMB)*1024*1024))

	slots, err := mgr.ListSlots()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.Writer)
	table.SetHeader([]string{"slot", "path", "size"})
	for _, s := range slots {
		table.Append([]string{
			fmt.Sprintf("%d", s.Index),
			s.Path,
			units.BytesSize(float64(s.SizeMB) * 1024 * 1024),
		})
	}
	table.Render()
	return nil
}
