/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package receiver

import (
	"fmt"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Reassembler places numbered datagram chunks at seq*chunkSize.
// Chunks may arrive before the size header and in any order.
type Reassembler struct {
	chunkSize int
	total     int64
	haveTotal bool
	chunks    map[uint64][]byte
	received  int64
}

func NewReassembler(chunkSize int) *Reassembler {
	if chunkSize <= 0 {
		chunkSize = core.ChunkSize
	}
	return &Reassembler{chunkSize: chunkSize, chunks: make(map[uint64][]byte)}
}

// SetTotal records the announced ciphertext length and discards early chunks
// that do not fit it, such as strays from an earlier transfer.
func (r *Reassembler) SetTotal(n int64) {
	r.total = n
	r.haveTotal = true
	for seq, p := range r.chunks {
		if seq >= r.chunkCount() || len(p) != r.expectedLen(seq) {
			r.received -= int64(len(p))
			delete(r.chunks, seq)
		}
	}
}

// Total returns the announced length and whether it is known.
func (r *Reassembler) Total() (int64, bool) {
	return r.total, r.haveTotal
}

// Place stores one chunk payload. Duplicates replace the earlier copy.
func (r *Reassembler) Place(seq uint64, payload []byte) error {
	if len(payload) == 0 || len(payload) > r.chunkSize {
		return fmt.Errorf("chunk %d: payload of %d bytes outside (0, %d]", seq, len(payload), r.chunkSize)
	}
	if r.haveTotal {
		if seq >= r.chunkCount() {
			return fmt.Errorf("chunk %d: offset beyond announced size %d", seq, r.total)
		}
		if want := r.expectedLen(seq); len(payload) != want {
			return fmt.Errorf("chunk %d: payload of %d bytes, want %d", seq, len(payload), want)
		}
	}
	if old, ok := r.chunks[seq]; ok {
		r.received -= int64(len(old))
	}
	r.chunks[seq] = append([]byte(nil), payload...)
	r.received += int64(len(payload))
	return nil
}

func (r *Reassembler) chunkCount() uint64 {
	return uint64((r.total + int64(r.chunkSize) - 1) / int64(r.chunkSize)) // #nosec G115 -- total is non-negative
}

// expectedLen is the payload length of chunk seq under the announced size.
// seq must be below chunkCount.
func (r *Reassembler) expectedLen(seq uint64) int {
	off := int64(seq) * int64(r.chunkSize) // #nosec G115 -- seq < chunkCount
	return int(min(int64(r.chunkSize), r.total-off))
}

// Received returns the number of distinct payload bytes held.
func (r *Reassembler) Received() int64 {
	return r.received
}

// Complete reports whether every byte of the announced size is present.
func (r *Reassembler) Complete() bool {
	if !r.haveTotal || r.received != r.total {
		return false
	}
	return uint64(len(r.chunks)) == r.chunkCount()
}

// Bytes returns the reassembled ciphertext, or ErrIncompleteStream with the
// first missing sequence number.
func (r *Reassembler) Bytes() ([]byte, error) {
	if !r.haveTotal {
		return nil, fmt.Errorf("%w: size header never arrived", crypto.ErrIncompleteStream)
	}
	out := make([]byte, r.total)
	n := int64(r.chunkCount()) // #nosec G115 -- total is capped by the receiver's max payload
	for seq := int64(0); seq < n; seq++ {
		p, ok := r.chunks[uint64(seq)]
		if !ok {
			return nil, fmt.Errorf("%w: chunk %d missing (%d of %d bytes)", crypto.ErrIncompleteStream, seq, r.received, r.total)
		}
		off := seq * int64(r.chunkSize)
		if off+int64(len(p)) > r.total || (seq < n-1 && len(p) != r.chunkSize) {
			return nil, fmt.Errorf("%w: chunk %d has unexpected length %d", crypto.ErrIncompleteStream, seq, len(p))
		}
		copy(out[off:], p)
	}
	if int64(len(r.chunks)) != n || r.received != r.total {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", crypto.ErrIncompleteStream, r.received, r.total)
	}
	return out, nil
}
