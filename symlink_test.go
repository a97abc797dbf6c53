/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package securesend_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	securesend "github.com/gitrgoliveira/go-securesend"
)

func TestSendFile_WithSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	srcPath := filepath.Join(tmpDir, "original.txt")
	testData := []byte("Hello, symlink test!")
	if err := os.WriteFile(srcPath, testData, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	symlinkPath := filepath.Join(tmpDir, "symlink.txt")
	if err := os.Symlink(srcPath, symlinkPath); err != nil {
		t.Skipf("Skipping test: cannot create symlink: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	port, ch := startReceiver(t, ctx, securesend.ModeStream, securesend.DefaultKey())

	res, err := securesend.SendFile(ctx, symlinkPath, "127.0.0.1", port, securesend.ModeStream, nil)
	if err != nil {
		t.Fatalf("SendFile with symlink failed: %v", err)
	}
	if res.PlaintextSize != int64(len(testData)) {
		t.Errorf("PlaintextSize = %d, want %d", res.PlaintextSize, len(testData))
	}

	got := <-ch
	if got.err != nil {
		t.Fatalf("Receive failed: %v", got.err)
	}
	if string(got.data) != string(testData) {
		t.Errorf("Received content mismatch. Got %q, want %q", got.data, testData)
	}
}

func TestSendFile_DanglingSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	symlinkPath := filepath.Join(tmpDir, "dangling.txt")
	if err := os.Symlink(filepath.Join(tmpDir, "gone.txt"), symlinkPath); err != nil {
		t.Skipf("Skipping test: cannot create symlink: %v", err)
	}

	_, err := securesend.SendFile(context.Background(), symlinkPath, "127.0.0.1", 9, securesend.ModeDatagram, nil)
	if !errors.Is(err, securesend.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestSendFile_WithPipe(t *testing.T) {
	tmpDir := t.TempDir()

	pipePath := filepath.Join(tmpDir, "test.pipe")
	if err := mkfifo(pipePath); err != nil {
		t.Skipf("Skipping test: cannot create named pipe: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	port, ch := startReceiver(t, ctx, securesend.ModeStream, securesend.DefaultKey())

	testData := []byte("Hello from pipe!")
	done := make(chan error, 1)
	go func() {
		pipe, err := os.OpenFile(pipePath, os.O_WRONLY, 0)
		if err != nil {
			done <- err
			return
		}
		defer pipe.Close()
		_, err = pipe.Write(testData)
		done <- err
	}()

	// The whole pipe is drained before encryption starts.
	if _, err := securesend.SendFile(ctx, pipePath, "127.0.0.1", port, securesend.ModeStream, nil); err != nil {
		t.Fatalf("SendFile with pipe failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Pipe writer failed: %v", err)
	}

	got := <-ch
	if got.err != nil {
		t.Fatalf("Receive failed: %v", got.err)
	}
	if string(got.data) != string(testData) {
		t.Errorf("Received content mismatch. Got %q, want %q", got.data, testData)
	}
}
