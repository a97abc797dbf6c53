/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package receiver implements the receiving end of the wire format: it reads
// a stream or a datagram sequence, reassembles the ciphertext and decrypts it.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

const (
	// DefaultMaxPayload caps the announced size a receiver will allocate for.
	DefaultMaxPayload = 1 << 30
	// DefaultLinger is how long to wait for stragglers after an early end marker.
	// A zero Config.Linger selects it; a negative one disables lingering.
	DefaultLinger = 200 * time.Millisecond

	maxDatagram = 65535
)

// Config tunes a receiver.
type Config struct {
	ChunkSize  int
	MaxPayload int64
	Linger     time.Duration
	Logger     *slog.Logger
}

// DefaultConfig matches the sender defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:  core.ChunkSize,
		MaxPayload: DefaultMaxPayload,
		Linger:     DefaultLinger,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.MaxPayload <= 0 {
		c.MaxPayload = d.MaxPayload
	}
	if c.Linger == 0 {
		c.Linger = d.Linger
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// ReadStream reads the 8-byte size header and then exactly that many bytes.
func ReadStream(r io.Reader, maxPayload int64) ([]byte, error) {
	hdr := make([]byte, core.HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("read size header: %w", err)
	}
	n := core.ByteOrder.Uint64(hdr)
	if maxPayload > 0 && n > uint64(maxPayload) {
		return nil, fmt.Errorf("announced size %d exceeds limit %d", n, maxPayload)
	}
	data := make([]byte, n)
	if got, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: read %d of %d bytes: %v", crypto.ErrIncompleteStream, got, n, err)
	}
	return data, nil
}

// AcceptStream accepts one connection on ln and reads a whole transfer from it.
func AcceptStream(ctx context.Context, ln net.Listener, cfg Config) ([]byte, error) {
	cfg = cfg.normalized()
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	stopConn := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stopConn()

	cfg.Logger.Info("stream accepted", "remote", conn.RemoteAddr().String())
	data, err := ReadStream(conn, cfg.MaxPayload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	cfg.Logger.Info("stream received", "bytes", len(data))
	return data, nil
}

// ReadDatagrams collects one datagram transfer from pc.
//
// The first 8-byte datagram that is not all ones is the size header. Longer
// datagrams are [seq][payload] chunks. An 8-byte all-ones datagram ends the transfer;
// if chunks are still missing at that point the receiver lingers briefly
// for reordered stragglers.
func ReadDatagrams(ctx context.Context, pc net.PacketConn, cfg Config) ([]byte, error) {
	cfg = cfg.normalized()
	stop := context.AfterFunc(ctx, func() { _ = pc.SetReadDeadline(time.Now()) })
	defer stop()

	r := NewReassembler(cfg.ChunkSize)
	buf := make([]byte, maxDatagram)
	ended := false

	for {
		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var ne net.Error
			if ended && errors.As(err, &ne) && ne.Timeout() {
				break
			}
			return nil, fmt.Errorf("read datagram: %w", err)
		}
		pkt := buf[:n]

		switch {
		case core.IsEndMarker(pkt):
			ended = true
			cfg.Logger.Debug("end marker received", "received", r.Received())
		case n == core.HeaderSize && !hasTotal(r):
			total := core.ByteOrder.Uint64(pkt)
			if total > uint64(cfg.MaxPayload) { // #nosec G115 -- MaxPayload is positive after normalization
				return nil, fmt.Errorf("announced size %d exceeds limit %d", total, cfg.MaxPayload)
			}
			r.SetTotal(int64(total)) // #nosec G115 -- bounded by MaxPayload
			cfg.Logger.Info("size header received", "remote", from.String(), "bytes", total)
		case n > core.SeqSize:
			seq := core.ByteOrder.Uint64(pkt[:core.SeqSize])
			if err := r.Place(seq, pkt[core.SeqSize:]); err != nil {
				cfg.Logger.Warn("chunk dropped", "seq", seq, "error", err)
			}
		default:
			cfg.Logger.Warn("unexpected datagram ignored", "bytes", n, "remote", from.String())
		}

		if ended {
			if r.Complete() || cfg.Linger < 0 {
				break
			}
			if err := pc.SetReadDeadline(time.Now().Add(cfg.Linger)); err != nil {
				break
			}
		}
	}

	data, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	cfg.Logger.Info("datagrams reassembled", "bytes", len(data))
	return data, nil
}

func hasTotal(r *Reassembler) bool {
	_, ok := r.Total()
	return ok
}

// Endpoint is a bound receiving socket for one transfer mode.
type Endpoint struct {
	mode core.TransferMode
	ln   net.Listener
	pc   net.PacketConn
	cfg  Config
}

// Bind opens a TCP listener or an IPv4 UDP socket on addr.
func Bind(mode core.TransferMode, addr string, cfg Config) (*Endpoint, error) {
	e := &Endpoint{mode: mode, cfg: cfg.normalized()}
	var err error
	switch mode {
	case core.ModeStream:
		e.ln, err = net.Listen("tcp", addr)
	case core.ModeDatagram:
		e.pc, err = net.ListenPacket("udp4", addr)
	default:
		return nil, fmt.Errorf("%w: %q", crypto.ErrUnsupportedKind, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", mode, addr, err)
	}
	return e, nil
}

// Addr returns the bound local address.
func (e *Endpoint) Addr() net.Addr {
	if e.ln != nil {
		return e.ln.Addr()
	}
	return e.pc.LocalAddr()
}

// Receive waits for one transfer and returns the decrypted plaintext.
func (e *Endpoint) Receive(ctx context.Context, key []byte) ([]byte, error) {
	var (
		ciphertext []byte
		err        error
	)
	if e.ln != nil {
		ciphertext, err = AcceptStream(ctx, e.ln, e.cfg)
	} else {
		ciphertext, err = ReadDatagrams(ctx, e.pc, e.cfg)
	}
	if err != nil {
		return nil, err
	}
	return core.Decrypt(ciphertext, key)
}

// Close releases the socket.
func (e *Endpoint) Close() error {
	if e.ln != nil {
		return e.ln.Close()
	}
	return e.pc.Close()
}

// Listen binds addr for mode, receives one transfer and decrypts it with key.
func Listen(ctx context.Context, mode core.TransferMode, addr string, key []byte, cfg Config) ([]byte, error) {
	e, err := Bind(mode, addr, cfg)
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.Receive(ctx, key)
}
