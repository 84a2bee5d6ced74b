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

// Package log provides the structured logging facade used across the
// module. It wraps logrus so callers depend on a small interface instead
// of a concrete logging library.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging contract every package in this module depends on.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level string)
	Out() io.Writer
}

type logrusLogger struct {
	entry *logrus.Logger
}

// Option configures a Logger at construction time.
type Option func(*logrusLogger)

// WithBuffer redirects log output to the given writer, handy for capturing
// logs in tests.
func WithBuffer(w io.Writer) Option {
	return func(l *logrusLogger) {
		l.entry.SetOutput(w)
	}
}

// WithDiscardAll silences the logger entirely.
func WithDiscardAll() Option {
	return func(l *logrusLogger) {
		l.entry.SetOutput(io.Discard)
	}
}

// WithLevel sets the initial log level (debug, info, warn, error).
func WithLevel(level string) Option {
	return func(l *logrusLogger) {
		l.SetLevel(level)
	}
}

// New returns a Logger backed by logrus, writing to stderr by default.
func New(opts ...Option) Logger {
	entry := logrus.New()
	entry.SetOutput(os.Stderr)
	entry.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	l := &logrusLogger{entry: entry}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *logrusLogger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Out() io.Writer {
	return l.entry.Out
}

func (l *logrusLogger) SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.entry.SetLevel(parsed)
}
