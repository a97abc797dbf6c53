/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// encryptor.go: Block cipher encoding for go-securesend
package core

import (
	"crypto/aes"
	"fmt"

	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Encryptor turns a plaintext blob into a padded ciphertext blob.
// The same key and plaintext always produce the same ciphertext.
type Encryptor struct {
	keyBuf    *crypto.SecureBuffer
	algorithm Algorithm
}

// NewEncryptor copies key into locked memory. Call Destroy when done.
func NewEncryptor(key []byte, opts ...Option) (*Encryptor, error) {
	cfg := NewConfig(opts...)
	if !cfg.Algorithm.IsSupported() {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "new encryptor", "", -1,
			fmt.Errorf("unsupported algorithm: %s (only AES-128-ECB is currently supported)", cfg.Algorithm))
	}
	if len(key) != KeySize {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "new encryptor", "", -1,
			fmt.Errorf("%w: must be %d bytes for AES-128, got %d", crypto.ErrInvalidKey, KeySize, len(key)))
	}
	keyBuf, err := crypto.NewSecureBufferFromBytes(key)
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "new encryptor", "", -1, err)
	}
	return &Encryptor{keyBuf: keyBuf, algorithm: cfg.Algorithm}, nil
}

// Encrypt returns a new buffer of length (len(plaintext)/BlockSize+1)*BlockSize.
// No partial output is returned on failure.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if e.keyBuf.Destroyed() {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "create cipher", "", -1,
			fmt.Errorf("%w: encryptor destroyed", crypto.ErrInvalidKey))
	}

	block, err := aes.NewCipher(e.keyBuf.Data())
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "create cipher", "", -1, err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	newECBEncrypter(block).CryptBlocks(ciphertext, padded)

	if len(ciphertext)%BlockSize != 0 || len(ciphertext) <= len(plaintext) {
		return nil, crypto.NewTransferError(crypto.KindCryptoOperation, "finalize", "", -1,
			fmt.Errorf("unexpected ciphertext length %d for %d input bytes", len(ciphertext), len(plaintext)))
	}
	return ciphertext, nil
}

// Destroy zeroes key material and unlocks memory
func (e *Encryptor) Destroy() {
	if e.keyBuf != nil {
		e.keyBuf.Destroy()
	}
}

// Encrypt is a one-shot helper around NewEncryptor.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	enc, err := NewEncryptor(key)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()
	return enc.Encrypt(plaintext)
}
