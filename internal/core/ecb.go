/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// ecb.go: ECB block mode and PKCS#7 padding
package core

import (
	"bytes"
	"crypto/cipher"

	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

// ecb runs a block cipher over independent blocks. It satisfies cipher.BlockMode.
type ecb struct {
	b       cipher.Block
	encrypt bool
}

func newECBEncrypter(b cipher.Block) cipher.BlockMode { return &ecb{b: b, encrypt: true} }

func newECBDecrypter(b cipher.Block) cipher.BlockMode { return &ecb{b: b} }

func (x *ecb) BlockSize() int { return x.b.BlockSize() }

func (x *ecb) CryptBlocks(dst, src []byte) {
	bs := x.b.BlockSize()
	if len(src)%bs != 0 {
		panic("securesend/ecb: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("securesend/ecb: output smaller than input")
	}
	for len(src) > 0 {
		if x.encrypt {
			x.b.Encrypt(dst[:bs], src[:bs])
		} else {
			x.b.Decrypt(dst[:bs], src[:bs])
		}
		src = src[bs:]
		dst = dst[bs:]
	}
}

// pkcs7Pad appends 1..blockSize bytes, each equal to the pad length.
// Block-aligned input gets a whole extra block.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, crypto.ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, crypto.ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, crypto.ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
