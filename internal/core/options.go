/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// options.go: Configuration options for go-securesend
package core

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Algorithm represents a cryptographic algorithm
type Algorithm uint8

const (
	// AlgorithmAES128ECB is AES-128 in ECB mode with PKCS#7 padding (default).
	// Deterministic and IV-free: equal plaintext blocks give equal ciphertext blocks.
	AlgorithmAES128ECB Algorithm = 1

	// AlgorithmAES128GCM is reserved for an authenticated, nonce-based upgrade.
	AlgorithmAES128GCM Algorithm = 2
)

// String returns the algorithm name
func (a Algorithm) String() string {
	switch a {
	case AlgorithmAES128ECB:
		return "AES-128-ECB"
	case AlgorithmAES128GCM:
		return "AES-128-GCM"
	default:
		return "Unknown"
	}
}

// IsSupported returns true if the algorithm is currently implemented
func (a Algorithm) IsSupported() bool {
	return a == AlgorithmAES128ECB
}

// Progress is reported after every unit put on the wire.
type Progress struct {
	Sent   int64 // ciphertext bytes dispatched so far
	Total  int64 // ciphertext length
	Chunks int   // chunks dispatched so far
}

// Fraction returns Sent/Total, or 1 for an empty transfer.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Sent) / float64(p.Total)
}

type Config struct {
	ChunkSize   int
	Progress    func(Progress)
	Checksum    bool
	Algorithm   Algorithm
	SettleDelay time.Duration
	ChunkDelay  time.Duration
	DialTimeout time.Duration
	Logger      *slog.Logger
}

// Option defines functional options for encoding and sending.
type Option func(*Config)

const (
	MinChunkSize = 1 // Minimum valid chunk size
	// DefaultSettleDelay is the pause after the datagram size header.
	DefaultSettleDelay = 100 * time.Millisecond
	// DefaultChunkDelay is the pause between datagram chunks.
	DefaultChunkDelay = time.Millisecond
)

// NewConfig returns the defaults with opts applied.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		ChunkSize:   ChunkSize,
		Algorithm:   AlgorithmAES128ECB,
		SettleDelay: DefaultSettleDelay,
		ChunkDelay:  DefaultChunkDelay,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// Validate checks option values that cannot be checked when the option is built.
func (c *Config) Validate() error {
	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return errors.New("invalid chunk size: must be between 1 byte and the maximum limit")
	}
	if c.SettleDelay < 0 || c.ChunkDelay < 0 || c.DialTimeout < 0 {
		return errors.New("delays and timeouts must not be negative")
	}
	return nil
}

// WithChunkSize sets the payload size of each wire unit.
// The receiver places datagram chunks at seq*size, so both ends must agree.
func WithChunkSize(size int) (Option, error) {
	maxChunkSize := MaxChunkSize
	if envLimit, exists := os.LookupEnv("SECURESEND_CHUNKSIZE_LIMIT"); exists {
		// The override can only tighten the datagram limit; unparsable values are ignored.
		if limit, err := humanize.ParseBytes(envLimit); err == nil && limit > 0 {
			// G115: Prevent integer overflow conversion uint64 -> int
			if limit > uint64(math.MaxInt) {
				return nil, errors.New("SECURESEND_CHUNKSIZE_LIMIT too large: exceeds int max value")
			}
			if int(limit) < maxChunkSize {
				maxChunkSize = int(limit)
			}
		}
	}

	if size < MinChunkSize || size > maxChunkSize {
		return nil, errors.New("invalid chunk size: must be between 1 byte and the maximum limit")
	}

	return func(cfg *Config) {
		cfg.ChunkSize = size
	}, nil
}

// WithProgress sets a callback invoked after each unit is dispatched.
// It never influences control flow.
func WithProgress(cb func(Progress)) Option {
	return func(cfg *Config) {
		cfg.Progress = cb
	}
}

// WithChecksum enables a SHA-256 digest of the source file in the result.
func WithChecksum(enable bool) Option {
	return func(cfg *Config) {
		cfg.Checksum = enable
	}
}

// WithAlgorithm sets the encryption algorithm (default: AES-128-ECB).
func WithAlgorithm(alg Algorithm) Option {
	return func(cfg *Config) {
		cfg.Algorithm = alg
	}
}

// WithSettleDelay sets the pause between the datagram size header and the first chunk.
func WithSettleDelay(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.SettleDelay = d
	}
}

// WithChunkDelay sets the pause between datagram chunks.
func WithChunkDelay(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.ChunkDelay = d
	}
}

// WithDialTimeout bounds the stream connect. Zero means no timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.DialTimeout = d
	}
}

// WithLogger sets the structured logger. nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}
