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

// Package config resolves the CLI's configuration from flags,
// environment variables, and an optional .env file, fills in defaults,
// and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

const (
	// DefaultMaxRead is the number of read-only transaction slots used
	// when neither a flag nor an environment variable sets one.
	DefaultMaxRead = 8
	// DefaultLogLevel is the logrus level used when unset.
	DefaultLogLevel = "info"
)

// Config is the resolved set of options the CLI drives the transaction
// manager with.
type Config struct {
	Root     string `validate:"required"`
	MaxRead  int    `validate:"gte=1"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Load resolves a Config from explicit flag values, falling back to
// BTRFSTRANS_ROOT/BTRFSTRANS_MAX_READ/BTRFSTRANS_LOG_LEVEL for whichever
// flags were left at their zero value, optionally loading those from
// envFile first. Defaults fill in anything still unset, and the result is
// validated before being returned.
func Load(root string, maxRead int, logLevel, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{Root: root, MaxRead: maxRead, LogLevel: logLevel}

	if cfg.Root == "" {
		cfg.Root = os.Getenv("BTRFSTRANS_ROOT")
	}
	if cfg.MaxRead == 0 {
		if v := os.Getenv("BTRFSTRANS_MAX_READ"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("parsing BTRFSTRANS_MAX_READ: %w", err)
			}
			cfg.MaxRead = n
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("BTRFSTRANS_LOG_LEVEL")
	}

	defaults := &Config{MaxRead: DefaultMaxRead, LogLevel: DefaultLogLevel}
	if err := mergo.Merge(cfg, defaults); err != nil {
		return nil, fmt.Errorf("applying configuration defaults: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
