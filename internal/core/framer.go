/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// framer.go: Splits a ciphertext into wire-ready segments
package core

import (
	"fmt"

	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Segment is one unit handed to a transport.
type Segment struct {
	// Seq is the chunk index. Unset (zero) for the end marker.
	Seq uint64
	// Payload is the ciphertext slice carried by this unit; nil for the end marker.
	Payload []byte
	// Wire is what goes on the wire: Payload for streams,
	// [Seq][Payload] for datagrams, or the encoded end marker.
	Wire []byte
	// Final is set on the datagram end marker.
	Final bool
}

// Framer yields segments in ciphertext order. It is forward-only and
// cannot be restarted; a transfer consumes it exactly once.
type Framer struct {
	data      []byte
	mode      TransferMode
	chunkSize int
	off       int
	seq       uint64
	ended     bool
}

// NewFramer prepares ciphertext for mode. chunkSize <= 0 selects ChunkSize.
func NewFramer(ciphertext []byte, mode TransferMode, chunkSize int) (*Framer, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", crypto.ErrUnsupportedKind, mode)
	}
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	if chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", crypto.ErrChunkSize, chunkSize, MaxChunkSize)
	}
	return &Framer{data: ciphertext, mode: mode, chunkSize: chunkSize}, nil
}

// Chunks returns how many payload-carrying segments the framer yields in total.
func (f *Framer) Chunks() int {
	return (len(f.data) + f.chunkSize - 1) / f.chunkSize
}

// Mode returns the transfer mode the segments are framed for.
func (f *Framer) Mode() TransferMode {
	return f.mode
}

// Next returns the next segment, or false once the sequence is exhausted.
func (f *Framer) Next() (Segment, bool) {
	if f.off < len(f.data) {
		end := min(f.off+f.chunkSize, len(f.data))
		payload := f.data[f.off:end]
		f.off = end

		seg := Segment{Seq: f.seq, Payload: payload, Wire: payload}
		if f.mode == ModeDatagram {
			wire := make([]byte, SeqSize+len(payload))
			ByteOrder.PutUint64(wire, f.seq)
			copy(wire[SeqSize:], payload)
			seg.Wire = wire
		}
		f.seq++
		return seg, true
	}

	if f.mode == ModeDatagram && !f.ended {
		f.ended = true
		return Segment{Wire: EncodeEndMarker(), Final: true}, true
	}
	return Segment{}, false
}
