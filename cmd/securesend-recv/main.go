/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Command securesend-recv receives one transfer, decrypts it and writes the
// plaintext to a file.
//
//	securesend-recv <tcp|udp> <port> <output_file>
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/gitrgoliveira/go-securesend/internal/config"
	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
	"github.com/gitrgoliveira/go-securesend/internal/logging"
	"github.com/gitrgoliveira/go-securesend/internal/receiver"
	"github.com/gitrgoliveira/go-securesend/secure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run receives one transfer. ready, if set, gets the bound address before
// the first read.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, ready func(net.Addr)) int {
	if len(args) < 4 {
		fmt.Fprintf(stderr, "Usage: %s <tcp|udp> <port> <output_file>\n", filepath.Base(args[0]))
		return 1
	}
	mode, err := core.ParseTransferMode(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	port, err := strconv.Atoi(args[2])
	if err != nil || port < 0 || port > 65535 {
		fmt.Fprintf(stderr, "error: invalid port %q\n", args[2])
		return 1
	}
	out := args[3]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: config: %v\n", err)
		return 1
	}
	log, closer := logging.Init(logging.Options{File: cfg.LogFile(), Level: cfg.LogLevel(), Stderr: stderr})
	defer closer.Close()

	key := cfg.Key()
	defer secure.Zero(key)

	ep, err := receiver.Bind(mode, net.JoinHostPort("0.0.0.0", strconv.Itoa(port)), recvConfig(log))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer ep.Close()
	log.Info("listening", "mode", mode.String(), "addr", ep.Addr().String())
	if ready != nil {
		ready(ep.Addr())
	}

	plaintext, err := ep.Receive(ctx, key)
	if err != nil {
		log.Error("receive failed", "kind", crypto.KindOf(err).String(), "error", err)
		fmt.Fprintf(stderr, "error: %v\n", crypto.SanitizeError(err))
		return 1
	}
	defer secure.Zero(plaintext)

	if err := os.WriteFile(out, plaintext, 0600); err != nil {
		log.Error("write output failed", "path", out, "error", err)
		fmt.Fprintf(stderr, "error: write output: %v\n", crypto.SanitizeError(err))
		return 1
	}
	fmt.Fprintf(stdout, "received %s into %s\n", humanize.Bytes(uint64(len(plaintext))), out)
	if cfg.Checksum() {
		sum, err := core.CalculateChecksumHex(out)
		if err != nil {
			log.Error("checksum failed", "path", out, "error", err)
			fmt.Fprintf(stderr, "error: checksum: %v\n", crypto.SanitizeError(err))
			return 1
		}
		fmt.Fprintf(stdout, "sha256 %s\n", sum)
	}
	return 0
}

func recvConfig(log *slog.Logger) receiver.Config {
	c := receiver.DefaultConfig()
	c.Logger = log
	return c
}
