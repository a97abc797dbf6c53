/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// key.go: Cipher key provisioning for go-securesend
package core

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultPBKDF2Iterations is the default iteration count for PBKDF2
	DefaultPBKDF2Iterations = 600000 // OWASP recommendation (2023)

	// MinPBKDF2Iterations is the minimum safe iteration count
	MinPBKDF2Iterations = 210000

	// DefaultSaltSize is the default salt size in bytes
	DefaultSaltSize = 16

	// DefaultKeySize is the derived key size (16 bytes for AES-128)
	DefaultKeySize = KeySize

	// Argon2id cost parameters for interactive use.
	DefaultArgon2Time    = 3
	DefaultArgon2Memory  = 64 * 1024 // KiB
	DefaultArgon2Threads = 4
	MinArgon2Memory      = 19 * 1024 // KiB
)

// defaultKey is the shared secret both ends are built with.
var defaultKey = [KeySize]byte{
	0x2D, 0x52, 0xA8, 0xF6, 0xA9, 0x25, 0x19, 0xFA,
	0x80, 0xF2, 0xFE, 0xAF, 0x09, 0x9B, 0xBF, 0x01,
}

// DefaultKey returns a fresh copy of the compiled-in key. The caller should
// zero it after use.
func DefaultKey() []byte {
	k := make([]byte, KeySize)
	copy(k, defaultKey[:])
	return k
}

// ParseKeyHex decodes a 32-character hex string into an AES-128 key.
func ParseKeyHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// DeriveKeyPBKDF2 derives a key from a passphrase using PBKDF2-HMAC-SHA256.
// The caller must zero the key after use.
func DeriveKeyPBKDF2(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if len(salt) < 16 {
		return nil, fmt.Errorf("salt must be at least 16 bytes, got %d", len(salt))
	}
	if iterations < MinPBKDF2Iterations {
		return nil, fmt.Errorf("iterations must be at least %d, got %d", MinPBKDF2Iterations, iterations)
	}
	if keyLen <= 0 || keyLen > 128 {
		return nil, fmt.Errorf("keyLen must be between 1 and 128 bytes, got %d", keyLen)
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}

// DeriveKeyArgon2 derives a key from a passphrase using Argon2id.
// Both ends must use the same salt and cost parameters.
func DeriveKeyArgon2(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if len(salt) < 16 {
		return nil, fmt.Errorf("salt must be at least 16 bytes, got %d", len(salt))
	}
	if time < 1 {
		return nil, fmt.Errorf("time cost must be at least 1, got %d", time)
	}
	if memory < MinArgon2Memory {
		return nil, fmt.Errorf("memory cost must be at least %d KiB, got %d", MinArgon2Memory, memory)
	}
	if threads < 1 {
		return nil, fmt.Errorf("threads must be at least 1, got %d", threads)
	}
	if keyLen == 0 || keyLen > 128 {
		return nil, fmt.Errorf("keyLen must be between 1 and 128 bytes, got %d", keyLen)
	}
	return argon2.IDKey(password, salt, time, memory, threads, keyLen), nil
}

// GenerateSalt generates a cryptographically secure random salt.
func GenerateSalt(size int) ([]byte, error) {
	if size < 16 {
		return nil, fmt.Errorf("salt size must be at least 16 bytes, got %d", size)
	}
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
