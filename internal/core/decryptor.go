/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// decryptor.go: Receiver-side decoding for go-securesend
package core

import (
	"crypto/aes"
	"fmt"

	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// Decryptor reverses Encryptor.
type Decryptor struct {
	keyBuf    *crypto.SecureBuffer
	algorithm Algorithm
}

func NewDecryptor(key []byte, opts ...Option) (*Decryptor, error) {
	cfg := NewConfig(opts...)
	if !cfg.Algorithm.IsSupported() {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "new decryptor", "", -1,
			fmt.Errorf("unsupported algorithm: %s (only AES-128-ECB is currently supported)", cfg.Algorithm))
	}
	if len(key) != KeySize {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "new decryptor", "", -1,
			fmt.Errorf("%w: must be %d bytes for AES-128, got %d", crypto.ErrInvalidKey, KeySize, len(key)))
	}
	keyBuf, err := crypto.NewSecureBufferFromBytes(key)
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "new decryptor", "", -1, err)
	}
	return &Decryptor{keyBuf: keyBuf, algorithm: cfg.Algorithm}, nil
}

// Decrypt validates block alignment and padding and returns the plaintext.
func (d *Decryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if d.keyBuf.Destroyed() {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "create cipher", "", -1,
			fmt.Errorf("%w: decryptor destroyed", crypto.ErrInvalidKey))
	}
	block, err := aes.NewCipher(d.keyBuf.Data())
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindCryptoInit, "create cipher", "", -1, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, crypto.NewTransferError(crypto.KindCryptoOperation, "decrypt", "", -1,
			fmt.Errorf("ciphertext length %d is not a positive multiple of %d", len(ciphertext), BlockSize))
	}

	plain := make([]byte, len(ciphertext))
	newECBDecrypter(block).CryptBlocks(plain, ciphertext)

	out, err := pkcs7Unpad(plain, BlockSize)
	if err != nil {
		return nil, crypto.NewTransferError(crypto.KindCryptoOperation, "unpad", "", -1, err)
	}
	return out, nil
}

// Destroy zeroes key material and unlocks memory
func (d *Decryptor) Destroy() {
	if d.keyBuf != nil {
		d.keyBuf.Destroy()
	}
}

// Decrypt is a one-shot helper around NewDecryptor.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	dec, err := NewDecryptor(key)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()
	return dec.Decrypt(ciphertext)
}
