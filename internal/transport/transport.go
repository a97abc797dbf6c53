/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package transport puts a framed ciphertext on the wire over TCP or UDP.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Sender writes the size header and then every segment of a framer.
// A Sender is bound to one destination and one transfer.
type Sender interface {
	// Send writes the size header for total bytes, then drains f.
	Send(ctx context.Context, f *core.Framer, total int) error
	// Mode reports which framing the sender expects.
	Mode() core.TransferMode
	// Close releases the socket. Safe to call more than once.
	Close() error
}

// New connects (stream) or opens a local socket (datagram) for addr.
// The variant is fixed for the sender's lifetime.
func New(ctx context.Context, mode core.TransferMode, addr string, cfg *core.Config) (Sender, error) {
	if cfg == nil {
		cfg = core.NewConfig()
	}
	switch mode {
	case core.ModeStream:
		return DialStream(ctx, addr, cfg)
	case core.ModeDatagram:
		return OpenDatagram(addr, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", crypto.ErrUnsupportedKind, mode)
	}
}

// progressTracker accumulates per-unit progress and forwards it to the callback.
type progressTracker struct {
	cb    func(core.Progress)
	state core.Progress
}

func newProgressTracker(cb func(core.Progress), total int) *progressTracker {
	return &progressTracker{cb: cb, state: core.Progress{Total: int64(total)}}
}

func (p *progressTracker) unit(seg core.Segment) {
	if len(seg.Payload) > 0 {
		p.state.Sent += int64(len(seg.Payload))
		p.state.Chunks++
	}
	p.report()
}

func (p *progressTracker) report() {
	if p.cb != nil {
		p.cb(p.state)
	}
}

// sleep blocks for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// matchMode rejects a framer built for another transport.
func matchMode(want core.TransferMode, f *core.Framer) error {
	if got := f.Mode(); got != want {
		return fmt.Errorf("%w: %s framer on %s transport", crypto.ErrUnsupportedKind, got, want)
	}
	return nil
}

func canceled(ctx context.Context, remote string, chunk int) error {
	if err := ctx.Err(); err != nil {
		return crypto.NewTransferError(crypto.KindTransportWrite, "send", remote, chunk,
			fmt.Errorf("%w: %v", crypto.ErrContextCanceled, err))
	}
	return nil
}
