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

// Package action holds the body of every btrfstrans CLI command: a thin
// client that loads configuration, drives a pkg/transaction.Manager, and
// reports results on the command's writers.
package action

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/vishsahu/btrfstrans-go/internal/config"
	"github.com/vishsahu/btrfstrans-go/pkg/log"
	"github.com/vishsahu/btrfstrans-go/pkg/sys"
	"github.com/vishsahu/btrfstrans-go/pkg/transaction"
)

const managerMetadataKey = "transaction-manager"

// Setup is the app's Before hook: it resolves configuration, builds a
// Manager, and initializes the managed root, stashing the Manager on the
// root command's metadata for subcommand actions to retrieve.
func Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(
		cmd.String("root"),
		int(cmd.Int("max-read")),
		cmd.String("log-level"),
		cmd.String("env-file"),
	)
	if err != nil {
		return ctx, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.WithLevel(cfg.LogLevel))
	system, err := sys.NewSystem(sys.WithLogger(logger))
	if err != nil {
		return ctx, fmt.Errorf("building system: %w", err)
	}

	mgr := transaction.New(
		transaction.WithSystem(system),
		transaction.WithMaxRead(cfg.MaxRead),
	)

	if err := mgr.Init(ctx, cfg.Root); err != nil {
		return ctx, fmt.Errorf("initializing %s: %w", cfg.Root, err)
	}

	if cmd.Metadata == nil {
		cmd.Metadata = map[string]any{}
	}
	cmd.Metadata[managerMetadataKey] = mgr
	return ctx, nil
}

// Teardown is the app's After hook: it releases the Manager's lock
// handles. It does not touch on-disk state.
func Teardown(_ context.Context, cmd *cli.Command) error {
	mgr, err := manager(cmd)
	if err != nil {
		return nil
	}
	return mgr.Close()
}

func manager(cmd *cli.Command) (*transaction.Manager, error) {
	mgr, ok := cmd.Root().Metadata[managerMetadataKey].(*transaction.Manager)
	if !ok {
		return nil, fmt.Errorf("transaction manager not initialized")
	}
	return mgr, nil
}
