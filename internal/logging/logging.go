/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package logging builds the process logger: JSON records to stderr and,
// optionally, to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the log file.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
)

// Options selects the logger outputs.
type Options struct {
	// File is the rotated log file path. Empty disables file output.
	File  string
	Level slog.Leveler
	// Stderr overrides the console writer; nil means os.Stderr.
	Stderr io.Writer
}

// New returns a JSON logger and a closer for the rotated file, if any.
func New(opts Options) (*slog.Logger, io.Closer) {
	console := opts.Stderr
	if console == nil {
		console = os.Stderr
	}

	var (
		w      io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			Compress:   false,
		}
		w = io.MultiWriter(console, rotator)
		closer = rotator
	}

	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closer
}

// Init builds the logger and installs it as the slog default.
func Init(opts Options) (*slog.Logger, io.Closer) {
	l, c := New(opts)
	slog.SetDefault(l)
	return l, c
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
