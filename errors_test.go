/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// errors_test.go: Error handling tests for go-securesend
package securesend_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	securesend "github.com/gitrgoliveira/go-securesend"
)

func TestEncrypt_InvalidKey(t *testing.T) {
	// AES-256 sized keys are rejected: the wire format is AES-128 only.
	_, err := securesend.Encrypt([]byte("test data"), make([]byte, 32))
	if !errors.Is(err, securesend.ErrCryptoInit) {
		t.Fatalf("expected ErrCryptoInit, got %v", err)
	}
	t.Logf("Got expected error: %v", err)
}

func TestDecrypt_TruncatedCiphertext(t *testing.T) {
	key := securesend.DefaultKey()
	defer securesend.ZeroKey(key)

	ciphertext, err := securesend.Encrypt([]byte("test data that spans two blocks"), key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = securesend.Decrypt(ciphertext[:len(ciphertext)-1], key)
	if !errors.Is(err, securesend.ErrCryptoOperation) {
		t.Fatalf("expected ErrCryptoOperation, got %v", err)
	}
}

func TestDecrypt_ECBBlockIndependence(t *testing.T) {
	key := securesend.DefaultKey()
	defer securesend.ZeroKey(key)

	plaintext := []byte("AAAAAAAAAAAAAAAABBBBBBBBBBBBBBBB")
	ciphertext, err := securesend.Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Corrupting the first block leaves the second block intact.
	ciphertext[0] ^= 0xff
	decrypted, err := securesend.Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(decrypted[16:]) != "BBBBBBBBBBBBBBBB" {
		t.Errorf("second block changed: %q", decrypted[16:])
	}
	if string(decrypted[:16]) == "AAAAAAAAAAAAAAAA" {
		t.Error("first block should have been garbled")
	}
}

func TestSendFile_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "test.bin")
	if err := os.WriteFile(srcPath, make([]byte, 64*1024), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := securesend.SendFile(ctx, srcPath, "127.0.0.1", pc.LocalAddr().(*net.UDPAddr).Port,
		securesend.ModeDatagram, nil, securesend.WithSettleDelay(time.Minute))
	if !errors.Is(err, securesend.ErrTransportWrite) {
		t.Fatalf("expected ErrTransportWrite, got %v", err)
	}
	if res.Chunks != 0 {
		t.Errorf("no chunk should have been sent, got %d", res.Chunks)
	}
}

func TestSendFile_Directory(t *testing.T) {
	_, err := securesend.SendFile(context.Background(), t.TempDir(), "127.0.0.1", 9, securesend.ModeStream, nil)
	if !errors.Is(err, securesend.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound for a directory, got %v", err)
	}
}

func TestSendFile_InvalidChunkSize(t *testing.T) {
	if _, err := securesend.WithChunkSize(0); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := securesend.WithChunkSize(70000); err == nil {
		t.Error("expected error for a chunk larger than a datagram")
	}
}

func TestParseTransferMode(t *testing.T) {
	for _, in := range []string{"tcp", "TCP", " udp "} {
		if _, err := securesend.ParseTransferMode(in); err != nil {
			t.Errorf("ParseTransferMode(%q) failed: %v", in, err)
		}
	}
	if _, err := securesend.ParseTransferMode("quic"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
