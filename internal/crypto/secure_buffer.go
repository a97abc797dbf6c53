/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"sync"

	"github.com/gitrgoliveira/go-securesend/secure"
)

// SecureBuffer holds cipher key material for the lifetime of an encoder.
// The backing array is a private copy, locked in memory when the platform allows.
type SecureBuffer struct {
	mu        sync.Mutex
	buf       []byte
	locked    bool
	destroyed bool
}

// NewSecureBufferFromBytes copies b into a new SecureBuffer.
// The caller keeps ownership of b and should zero it when done.
func NewSecureBufferFromBytes(b []byte) (*SecureBuffer, error) {
	if len(b) == 0 {
		return nil, WrapError("secure buffer", ErrInvalidKey)
	}
	buf := make([]byte, len(b))
	copy(buf, b)

	// mlock can fail under RLIMIT_MEMLOCK; the buffer still works unlocked.
	locked := secure.LockMemory(buf) == nil

	return &SecureBuffer{buf: buf, locked: locked}, nil
}

// Data returns the key bytes. The slice aliases the buffer and is zeroed by Destroy.
func (s *SecureBuffer) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Len returns the key length in bytes.
func (s *SecureBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Destroyed reports whether Destroy has run.
func (s *SecureBuffer) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Destroy zeroes the buffer and releases the memory lock. Safe to call repeatedly.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	secure.Zero(s.buf)
	if s.locked {
		_ = secure.UnlockMemory(s.buf)
		s.locked = false
	}
	s.destroyed = true
}
