/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package securesend encrypts a file with AES-128 and sends it to a receiver
// over TCP or UDP, using a small length-prefixed wire format.
//
// # Wire Format
//
// All integers are unsigned 64-bit little-endian.
//
// Stream (TCP): an 8-byte size header N, then exactly N ciphertext bytes.
//
// Datagram (UDP): one datagram holding the 8-byte size header, then one
// datagram per chunk of the form [8-byte seq][up to 1024 ciphertext bytes],
// then one datagram holding the end marker 0xFFFFFFFFFFFFFFFF. The receiver
// places each chunk at seq*1024. Nothing is acknowledged or retransmitted.
//
// # Basic Usage
//
//	ctx := context.Background()
//	res, err := securesend.SendFile(ctx, "image.png", "10.0.0.5", 9000, securesend.ModeStream, nil)
//	if err != nil {
//	    switch {
//	    case errors.Is(err, securesend.ErrFileNotFound):
//	        // nothing was sent
//	    case errors.Is(err, securesend.ErrConnect):
//	        // receiver unreachable
//	    }
//	}
//
// A nil key selects the key compiled into both ends. To use a shared
// passphrase instead:
//
//	key, _ := securesend.DeriveKeyArgon2(pass, salt,
//	    securesend.DefaultArgon2Time, securesend.DefaultArgon2Memory,
//	    securesend.DefaultArgon2Threads, securesend.DefaultKeySize)
//	defer securesend.ZeroKey(key)
//
// # Security Considerations
//
// The cipher mode is ECB: it takes no IV and equal plaintext blocks produce
// equal ciphertext blocks, so patterns in the input stay visible. There is
// no integrity protection. Treat the encryption as obfuscation against casual
// observers, not as confidentiality against an active attacker.
package securesend

import (
	"context"
	"net"
	"strconv"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
	"github.com/gitrgoliveira/go-securesend/internal/receiver"
	"github.com/gitrgoliveira/go-securesend/internal/transfer"
	"github.com/gitrgoliveira/go-securesend/secure"
)

// Option configures a transfer (re-exported from internal/core).
type Option = core.Option

// TransferMode selects the transport.
type TransferMode = core.TransferMode

const (
	ModeStream   = core.ModeStream
	ModeDatagram = core.ModeDatagram
)

// Progress is passed to WithProgress callbacks.
type Progress = core.Progress

// Result describes a transfer, including a failed one.
type Result = transfer.Result

// TransferError carries the failure kind, operation and chunk number.
type TransferError = crypto.TransferError

// Error kind sentinels; match with errors.Is.
var (
	ErrFileNotFound    = crypto.ErrFileNotFound
	ErrCryptoInit      = crypto.ErrCryptoInit
	ErrCryptoOperation = crypto.ErrCryptoOperation
	ErrConnect         = crypto.ErrConnect
	ErrTransportWrite  = crypto.ErrTransportWrite
)

// Option constructors (re-exported from internal/core).
var (
	WithChunkSize   = core.WithChunkSize
	WithProgress    = core.WithProgress
	WithChecksum    = core.WithChecksum
	WithAlgorithm   = core.WithAlgorithm
	WithSettleDelay = core.WithSettleDelay
	WithChunkDelay  = core.WithChunkDelay
	WithDialTimeout = core.WithDialTimeout
	WithLogger      = core.WithLogger
)

var ParseTransferMode = core.ParseTransferMode

// Re-export checksum helpers from internal/core so receivers can verify a result.
var CalculateChecksum = core.CalculateChecksum
var CalculateChecksumHex = core.CalculateChecksumHex
var VerifyChecksum = core.VerifyChecksum
var VerifyChecksumHex = core.VerifyChecksumHex

// SendFile reads path, encrypts it and sends it to host:port.
// A nil key selects DefaultKey.
func SendFile(ctx context.Context, path, host string, port int, mode TransferMode, key []byte, opts ...Option) (*Result, error) {
	return transfer.Run(ctx, transfer.Request{Path: path, Host: host, Port: port, Mode: mode, Key: key}, opts...)
}

// ReceiveFile binds port on all interfaces, waits for one transfer and
// returns the decrypted contents. A nil key selects DefaultKey.
func ReceiveFile(ctx context.Context, mode TransferMode, port int, key []byte) ([]byte, error) {
	if key == nil {
		key = core.DefaultKey()
		defer secure.Zero(key)
	}
	return receiver.Listen(ctx, mode, net.JoinHostPort("0.0.0.0", strconv.Itoa(port)), key, receiver.DefaultConfig())
}

// Encrypt returns the AES-128-ECB/PKCS#7 ciphertext of plaintext.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	return core.Encrypt(plaintext, key)
}

// Decrypt reverses Encrypt.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	return core.Decrypt(ciphertext, key)
}

// DefaultKey returns a copy of the compiled-in key.
var DefaultKey = core.DefaultKey

// ParseKeyHex decodes a 32-character hex key.
var ParseKeyHex = core.ParseKeyHex

// Re-export key derivation constants from internal/core
const (
	KeySize                 = core.KeySize
	BlockSize               = core.BlockSize
	ChunkSize               = core.ChunkSize
	DefaultPBKDF2Iterations = core.DefaultPBKDF2Iterations
	DefaultSaltSize         = core.DefaultSaltSize
	DefaultKeySize          = core.DefaultKeySize
	DefaultArgon2Time       = core.DefaultArgon2Time
	DefaultArgon2Memory     = core.DefaultArgon2Memory
	DefaultArgon2Threads    = core.DefaultArgon2Threads
)

// ZeroKey securely zeroes a key slice.
var ZeroKey = secure.Zero

// DeriveKeyPBKDF2 derives a key from a password using PBKDF2-HMAC-SHA256.
func DeriveKeyPBKDF2(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	return core.DeriveKeyPBKDF2(password, salt, iterations, keyLen)
}

// DeriveKeyArgon2 derives a key from a password using Argon2id.
// Sender and receiver must agree on the salt and every cost parameter.
func DeriveKeyArgon2(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) ([]byte, error) {
	return core.DeriveKeyArgon2(password, salt, time, memory, threads, keyLen)
}

// GenerateSalt generates a random salt of the specified size.
func GenerateSalt(size int) ([]byte, error) {
	return core.GenerateSalt(size)
}
