/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Command securesend encrypts a file and sends it to a receiver over TCP or UDP.
//
//	securesend <filename> <host> <port> <tcp|udp>
//
// Settings are read from SECURESEND_* environment variables and an optional
// .env file in the working directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gitrgoliveira/go-securesend/internal/config"
	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
	"github.com/gitrgoliveira/go-securesend/internal/logging"
	"github.com/gitrgoliveira/go-securesend/internal/progress"
	"github.com/gitrgoliveira/go-securesend/internal/transfer"
	"github.com/gitrgoliveira/go-securesend/secure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 5 {
		fmt.Fprintf(stderr, "Usage: %s <filename> <host> <port> <tcp|udp>\n", filepath.Base(args[0]))
		return 1
	}
	path, host := args[1], args[2]

	port, err := parsePort(args[3])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	mode, err := core.ParseTransferMode(args[4])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: config: %v\n", err)
		return 1
	}
	log, closer := logging.Init(logging.Options{File: cfg.LogFile(), Level: cfg.LogLevel(), Stderr: stderr})
	defer closer.Close()

	key := cfg.Key()
	defer secure.Zero(key)
	log.Debug("configuration loaded", "key_source", string(cfg.KeySource()))

	rep := progress.NewReporter(stdout, filepath.Base(path), cfg.NoColor())
	opts := append(cfg.Options(), core.WithLogger(log), core.WithProgress(rep.Update))

	res, err := transfer.Run(ctx, transfer.Request{Path: path, Host: host, Port: port, Mode: mode, Key: key}, opts...)
	rep.Finish(err)
	if err != nil {
		fmt.Fprintf(stderr, "error (%s): %v\n", crypto.KindOf(err), crypto.SanitizeError(err))
		return 1
	}
	if res.Checksum != "" {
		fmt.Fprintf(stdout, "sha256 %s\n", res.Checksum)
	}
	return 0
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}
