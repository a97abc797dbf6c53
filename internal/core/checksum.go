/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/gitrgoliveira/go-securesend/internal/crypto"
	"github.com/gitrgoliveira/go-securesend/secure"
)

// Checksum computes the SHA-256 digest of an in-memory blob.
func Checksum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ChecksumReader digests r to EOF.
func ChecksumReader(r io.Reader) ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, crypto.WrapError("digest", err)
	}
	return h.Sum(nil), nil
}

// CalculateChecksum digests the file at path without loading it whole.
// The receiver uses it to fingerprint what it wrote.
func CalculateChecksum(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- path provided by caller
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindFileNotFound, "open", path, -1, err)
	}
	defer f.Close()
	return ChecksumReader(f)
}

// CalculateChecksumHex is CalculateChecksum, hex-encoded the way
// transfer results report it.
func CalculateChecksumHex(path string) (string, error) {
	sum, err := CalculateChecksum(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// VerifyChecksum checks if the blob matches the given digest
func VerifyChecksum(data, sum []byte) bool {
	return secure.SecureCompare(Checksum(data), sum)
}

// VerifyChecksumHex checks if the blob matches the given hex-encoded digest
func VerifyChecksumHex(data []byte, hexSum string) (bool, error) {
	sum, err := hex.DecodeString(hexSum)
	if err != nil {
		return false, fmt.Errorf("invalid hex checksum: %w", err)
	}
	return VerifyChecksum(data, sum), nil
}
