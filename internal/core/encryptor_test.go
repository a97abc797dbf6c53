/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// encryptor_test.go: Block cipher encoder tests
package core

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/gitrgoliveira/go-securesend/internal/crypto"
	"github.com/gitrgoliveira/go-securesend/secure"
)

func TestEncrypt_KnownAnswer(t *testing.T) {
	// FIPS-197 Appendix C.1
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	plaintext, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	want, _ := hex.DecodeString("69c4e0d86a7b0430d8cdb78070b4c55a")

	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if len(ciphertext) != 2*BlockSize {
		t.Fatalf("expected 32 bytes (one data block + padding block), got %d", len(ciphertext))
	}
	if !bytes.Equal(ciphertext[:BlockSize], want) {
		t.Errorf("first block = %x, want %x", ciphertext[:BlockSize], want)
	}
}

func TestEncrypt_PaddingLength(t *testing.T) {
	key := DefaultKey()
	defer secure.Zero(key)

	tests := []struct {
		in   int
		want int
	}{
		{0, 16},
		{1, 16},
		{10, 16},
		{15, 16},
		{16, 32},
		{17, 32},
		{1024, 1040},
		{2050, 2064},
	}

	for _, tt := range tests {
		ciphertext, err := Encrypt(make([]byte, tt.in), key)
		if err != nil {
			t.Fatalf("Encrypt(%d bytes) failed: %v", tt.in, err)
		}
		if len(ciphertext) != tt.want {
			t.Errorf("len(Encrypt(%d bytes)) = %d, want %d", tt.in, len(ciphertext), tt.want)
		}
		if len(ciphertext)%BlockSize != 0 {
			t.Errorf("ciphertext length %d not block aligned", len(ciphertext))
		}
		if len(ciphertext) <= tt.in {
			t.Errorf("ciphertext (%d) not longer than plaintext (%d)", len(ciphertext), tt.in)
		}
	}
}

func TestEncrypt_RoundTrip(t *testing.T) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	defer secure.Zero(key)

	for _, size := range []int{0, 1, 15, 16, 17, 1023, 1024, 1025, 4096 + 3} {
		plaintext := make([]byte, size)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatalf("failed to generate data: %v", err)
		}

		ciphertext, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		decrypted, err := Decrypt(ciphertext, key)
		if err != nil {
			t.Fatalf("Decrypt failed for %d bytes: %v", size, err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Errorf("round trip mismatch for %d bytes", size)
		}
	}
}

func TestEncrypt_Deterministic(t *testing.T) {
	key := DefaultKey()
	defer secure.Zero(key)
	plaintext := []byte("the same input twice gives the same output")

	c1, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	c2, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !bytes.Equal(c1, c2) {
		t.Error("encryption is not deterministic; an IV or nonce is being used")
	}
}

func TestEncrypt_EqualBlocksLeak(t *testing.T) {
	// No chaining: identical plaintext blocks give identical ciphertext blocks.
	key := DefaultKey()
	defer secure.Zero(key)

	plaintext := bytes.Repeat([]byte("YELLOW SUBMARINE"), 3)
	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b0 := ciphertext[0:16]
	if !bytes.Equal(b0, ciphertext[16:32]) || !bytes.Equal(b0, ciphertext[32:48]) {
		t.Error("expected identical ciphertext blocks for identical plaintext blocks")
	}
}

func TestNewEncryptor_InvalidKey(t *testing.T) {
	for _, n := range []int{0, 15, 17, 24, 32} {
		_, err := NewEncryptor(make([]byte, n))
		if err == nil {
			t.Fatalf("expected error for %d-byte key", n)
		}
		if !errors.Is(err, crypto.ErrCryptoInit) {
			t.Errorf("expected CryptoInitError for %d-byte key, got %v", n, err)
		}
		if !errors.Is(err, crypto.ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey in chain, got %v", err)
		}
	}
}

func TestNewEncryptor_UnsupportedAlgorithm(t *testing.T) {
	_, err := NewEncryptor(DefaultKey(), WithAlgorithm(AlgorithmAES128GCM))
	if !errors.Is(err, crypto.ErrCryptoInit) {
		t.Fatalf("expected CryptoInitError, got %v", err)
	}
}

func TestEncryptor_Destroy(t *testing.T) {
	enc, err := NewEncryptor(DefaultKey())
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}

	enc.Destroy()
	enc.Destroy()

	for i, b := range enc.keyBuf.Data() {
		if b != 0 {
			t.Errorf("key byte %d not zeroed: %d", i, b)
		}
	}
	if _, err := enc.Encrypt([]byte("data")); err == nil {
		t.Error("expected Encrypt to fail after Destroy")
	}
}

func TestDecrypt_Invalid(t *testing.T) {
	key := DefaultKey()
	defer secure.Zero(key)

	good, err := Encrypt([]byte("hello"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// A raw block of zeros decrypts to a zero pad byte.
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher failed: %v", err)
	}
	badPad := make([]byte, BlockSize)
	block.Encrypt(badPad, make([]byte, BlockSize))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not block aligned", good[:len(good)-1]},
		{"corrupt padding", badPad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.data, key)
			if !errors.Is(err, crypto.ErrCryptoOperation) {
				t.Errorf("expected CryptoOperationError, got %v", err)
			}
		})
	}
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    []byte
		wantErr bool
	}{
		{"full pad block", bytes.Repeat([]byte{16}, 16), []byte{}, false},
		{"one byte pad", append(bytes.Repeat([]byte{'a'}, 15), 1), bytes.Repeat([]byte{'a'}, 15), false},
		{"zero pad byte", append(bytes.Repeat([]byte{'a'}, 15), 0), nil, true},
		{"pad too large", append(bytes.Repeat([]byte{'a'}, 15), 17), nil, true},
		{"inconsistent", append(bytes.Repeat([]byte{'a'}, 14), 3, 2), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tt.in, BlockSize)
			if tt.wantErr {
				if !errors.Is(err, crypto.ErrInvalidPadding) {
					t.Errorf("expected ErrInvalidPadding, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %x, want %x", got, tt.want)
			}
		})
	}
}
