/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Stream sends over one TCP connection. Writes block until complete.
type Stream struct {
	conn     net.Conn
	remote   string
	progress func(core.Progress)
	log      *slog.Logger
}

// DialStream connects to addr. Unreachable peers and malformed addresses
// surface as ConnectError.
func DialStream(ctx context.Context, addr string, cfg *core.Config) (*Stream, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindConnect, "dial", addr, -1, err)
	}
	cfg.Logger.Debug("stream connected", "remote", conn.RemoteAddr().String(), "local", conn.LocalAddr().String())
	return NewStream(conn, cfg), nil
}

// NewStream wraps an established connection.
func NewStream(conn net.Conn, cfg *core.Config) *Stream {
	return &Stream{
		conn:     conn,
		remote:   conn.RemoteAddr().String(),
		progress: cfg.Progress,
		log:      cfg.Logger,
	}
}

func (s *Stream) Mode() core.TransferMode { return core.ModeStream }

// Send writes the size header and each chunk in order. Any failure aborts
// the rest of the transfer; there is no resume.
func (s *Stream) Send(ctx context.Context, f *core.Framer, total int) error {
	if err := matchMode(s.Mode(), f); err != nil {
		return err
	}
	pt := newProgressTracker(s.progress, total)

	if err := canceled(ctx, s.remote, -1); err != nil {
		return err
	}
	if err := s.write(core.EncodeSizeHeader(total), -1); err != nil {
		return err
	}
	pt.report()

	chunk := 0
	for {
		seg, ok := f.Next()
		if !ok {
			break
		}
		if err := canceled(ctx, s.remote, chunk); err != nil {
			return err
		}
		if err := s.write(seg.Wire, chunk); err != nil {
			return err
		}
		pt.unit(seg)
		s.log.Debug("chunk sent", "chunk", chunk, "bytes", len(seg.Wire), "sent", pt.state.Sent, "total", total)
		chunk++
	}
	return nil
}

func (s *Stream) write(b []byte, chunk int) error {
	n, err := s.conn.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return crypto.NewTransferError(crypto.KindTransportWrite, "write", s.remote, chunk,
			fmt.Errorf("wrote %d of %d bytes: %w", n, len(b), err))
	}
	return nil
}

// Close closes the connection.
func (s *Stream) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
