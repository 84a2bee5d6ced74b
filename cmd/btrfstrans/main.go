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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vishsahu/btrfstrans-go/internal/cli/action"
	"github.com/vishsahu/btrfstrans-go/internal/cli/app"
	"github.com/vishsahu/btrfstrans-go/internal/cli/cmd"
)

func main() {
	a := app.New(
		"drive transactions against a btrfstrans-managed root",
		cmd.GlobalFlags(),
		action.Setup,
		action.Teardown,
		cmd.NewStartWriteCommand(),
		cmd.NewCommitCommand(),
		cmd.NewAbortCommand(),
		cmd.NewStartReadCommand(),
		cmd.NewStopReadCommand(),
		cmd.NewListCommand(),
	)

	if err := a.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
