/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// format.go: Wire format constants for go-securesend
package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	// BlockSize is the AES block size; ciphertext length is always a multiple of it.
	BlockSize = 16
	// KeySize is the AES-128 key length.
	KeySize = 16
	// ChunkSize is the payload size of one wire unit (1KB).
	ChunkSize = 1024
	// HeaderSize is the size of the total-length header sent before any chunk.
	HeaderSize = 8
	// SeqSize is the size of the sequence number prefixed to each datagram chunk.
	SeqSize = 8
	// MaxChunkSize keeps a numbered chunk inside one IPv4 UDP datagram.
	MaxChunkSize = 65507 - SeqSize
	// EndMarker terminates a datagram transfer. All-ones, so byte order does not matter.
	EndMarker uint64 = math.MaxUint64
)

// ByteOrder is used for the size header, sequence numbers and the end marker.
// Fixed little-endian so x86 senders built from other toolchains interoperate.
var ByteOrder = binary.LittleEndian

// TransferMode selects how a ciphertext is framed and carried.
type TransferMode string

const (
	// ModeStream is the connection-oriented transport (TCP).
	ModeStream TransferMode = "tcp"
	// ModeDatagram is the connectionless transport (UDP).
	ModeDatagram TransferMode = "udp"
)

// String returns the transport name
func (m TransferMode) String() string {
	return string(m)
}

// IsValid reports whether m names a known transport.
func (m TransferMode) IsValid() bool {
	return m == ModeStream || m == ModeDatagram
}

// ParseTransferMode accepts "tcp" or "udp" (case-insensitive).
func ParseTransferMode(s string) (TransferMode, error) {
	m := TransferMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown transfer mode %q: want tcp or udp", s)
	}
	return m, nil
}

// EncodeSizeHeader returns the 8-byte header announcing n ciphertext bytes.
func EncodeSizeHeader(n int) []byte {
	b := make([]byte, HeaderSize)
	ByteOrder.PutUint64(b, uint64(n)) // #nosec G115 -- n is a slice length, never negative
	return b
}

// EncodeEndMarker returns the 8-byte terminal datagram.
func EncodeEndMarker() []byte {
	b := make([]byte, SeqSize)
	ByteOrder.PutUint64(b, EndMarker)
	return b
}

// IsEndMarker reports whether a received datagram is the terminal unit.
func IsEndMarker(b []byte) bool {
	return len(b) == SeqSize && ByteOrder.Uint64(b) == EndMarker
}
