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

// Package cmd wires up every btrfstrans subcommand: flag definitions and
// the cli.Command values the app is built from. The command bodies
// themselves live in internal/cli/action.
package cmd

import (
	"github.com/urfave/cli/v3"

	"github.com/vishsahu/btrfstrans-go/internal/cli/action"
)

// GlobalFlags are the flags accepted by every subcommand, resolved into
// a config.Config by action.Setup.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "root",
			Usage: "managed root directory on a Btrfs filesystem",
		},
		&cli.IntFlag{
			Name:  "max-read",
			Usage: "number of concurrent read-only transaction slots",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "logging level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "optional .env file to load configuration from",
		},
	}
}

func NewStartWriteCommand() *cli.Command {
	return &cli.Command{
		Name:   "start-write",
		Usage:  "begin a write transaction",
		Action: action.StartWrite,
	}
}

func NewCommitCommand() *cli.Command {
	return &cli.Command{
		Name:   "commit",
		Usage:  "publish the open write transaction as the new head",
		Action: action.Commit,
	}
}

func NewAbortCommand() *cli.Command {
	return &cli.Command{
		Name:   "abort",
		Usage:  "discard the open write transaction",
		Action: action.Abort,
	}
}

func NewStartReadCommand() *cli.Command {
	return &cli.Command{
		Name:   "start-read",
		Usage:  "begin a read-only transaction against the current head",
		Action: action.StartRead,
	}
}

func NewStopReadCommand() *cli.Command {
	return &cli.Command{
		Name:   "stop-read",
		Usage:  "end the open read-only transaction",
		Action: action.StopRead,
	}
}

func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "show the committed tree size and occupied read-only slots",
		Action: action.List,
	}
}
