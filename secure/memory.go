/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package secure holds helpers for handling cipher keys in memory.
package secure

import (
	"crypto/subtle"
)

// Zero overwrites b with zeros.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	clear(b)
	// Keep the writes observable so they are not elided.
	_ = subtle.ConstantTimeCompare(b, make([]byte, len(b)))
}

// SecureCompare performs constant-time comparison of two byte slices
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
