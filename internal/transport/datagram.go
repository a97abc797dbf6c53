/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Datagram sends fire-and-forget UDP datagrams from an unconnected IPv4 socket.
// Nothing is acknowledged or retransmitted; a nil error from Send only means
// every datagram left the local socket.
type Datagram struct {
	conn        net.PacketConn
	dst         net.Addr
	remote      string
	settleDelay time.Duration
	chunkDelay  time.Duration
	progress    func(core.Progress)
	log         *slog.Logger
}

// OpenDatagram resolves addr and opens a local socket. No packet is sent.
func OpenDatagram(addr string, cfg *core.Config) (*Datagram, error) {
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindTransportWrite, "resolve", addr, -1, err)
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindTransportWrite, "open socket", addr, -1, err)
	}
	return NewDatagram(conn, dst, cfg), nil
}

// NewDatagram sends from conn to dst.
func NewDatagram(conn net.PacketConn, dst net.Addr, cfg *core.Config) *Datagram {
	return &Datagram{
		conn:        conn,
		dst:         dst,
		remote:      dst.String(),
		settleDelay: cfg.SettleDelay,
		chunkDelay:  cfg.ChunkDelay,
		progress:    cfg.Progress,
		log:         cfg.Logger,
	}
}

func (d *Datagram) Mode() core.TransferMode { return core.ModeDatagram }

// Send emits the size header, waits the settle delay, then each numbered
// chunk with the inter-chunk delay, then the end marker once.
func (d *Datagram) Send(ctx context.Context, f *core.Framer, total int) error {
	if err := matchMode(d.Mode(), f); err != nil {
		return err
	}
	pt := newProgressTracker(d.progress, total)

	if err := canceled(ctx, d.remote, -1); err != nil {
		return err
	}
	if err := d.sendTo(core.EncodeSizeHeader(total), -1); err != nil {
		return err
	}
	pt.report()

	// Give the receiver a head start on the header; this narrows the race
	// but does not close it.
	if err := sleep(ctx, d.settleDelay); err != nil {
		return canceled(ctx, d.remote, -1)
	}

	chunk := 0
	for {
		seg, ok := f.Next()
		if !ok {
			break
		}
		if seg.Final {
			if err := d.sendTo(seg.Wire, -1); err != nil {
				return err
			}
			pt.unit(seg)
			d.log.Debug("end marker sent", "chunks", chunk)
			continue
		}

		if err := canceled(ctx, d.remote, chunk); err != nil {
			return err
		}
		if err := d.sendTo(seg.Wire, chunk); err != nil {
			return err
		}
		pt.unit(seg)
		d.log.Debug("chunk sent", "seq", seg.Seq, "bytes", len(seg.Payload), "sent", pt.state.Sent, "total", total)
		chunk++

		if err := sleep(ctx, d.chunkDelay); err != nil {
			return canceled(ctx, d.remote, chunk)
		}
	}
	return nil
}

func (d *Datagram) sendTo(b []byte, chunk int) error {
	n, err := d.conn.WriteTo(b, d.dst)
	if err == nil && n != len(b) {
		err = fmt.Errorf("short datagram: %d of %d bytes", n, len(b))
	}
	if err != nil {
		return crypto.NewTransferError(crypto.KindTransportWrite, "send", d.remote, chunk, err)
	}
	return nil
}

// Close closes the local socket.
func (d *Datagram) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
