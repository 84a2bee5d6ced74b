/*
Copyright © 2022-2025 SUSE LLC
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

// Package sys bundles the ambient dependencies every other package in this
// module needs: a filesystem and a logger. Passing a *System around instead
// of a bare vfs.FS keeps call sites swappable in tests.
package sys

import (
	"github.com/vishsahu/btrfstrans-go/pkg/log"
	"github.com/vishsahu/btrfstrans-go/pkg/sys/vfs"
)

// FS is re-exported so callers only need to import this package.
type FS = vfs.FS

type System struct {
	logger log.Logger
	fs     vfs.FS
}

type SystemOpts func(s *System) error

func WithFS(fs vfs.FS) SystemOpts {
	return func(s *System) error {
		s.fs = fs
		return nil
	}
}

func WithLogger(logger log.Logger) SystemOpts {
	return func(s *System) error {
		s.logger = logger
		return nil
	}
}

// NewSystem builds a System with sane defaults, applying opts on top.
func NewSystem(opts ...SystemOpts) (*System, error) {
	sysObj := &System{
		fs:     vfs.New(),
		logger: log.New(),
	}

	for _, o := range opts {
		if err := o(sysObj); err != nil {
			return nil, err
		}
	}
	return sysObj, nil
}

func (s System) FS() vfs.FS {
	return s.fs
}

func (s System) Logger() log.Logger {
	return s.logger
}
