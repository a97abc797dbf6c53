/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// platform_test.go: Cross-platform behavior tests
package securesend_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	securesend "github.com/gitrgoliveira/go-securesend"
	"github.com/gitrgoliveira/go-securesend/secure"
)

// TestCrossPlatform_MemoryLocking tests that memory locking behaves correctly
// on all platforms. Unprivileged processes may be refused.
func TestCrossPlatform_MemoryLocking(t *testing.T) {
	data := []byte("test data for memory locking")

	if err := secure.LockMemory(data); err != nil {
		t.Logf("LockMemory failed on %s (may require elevated permissions): %v", runtime.GOOS, err)
		return
	}
	if err := secure.UnlockMemory(data); err != nil {
		t.Errorf("UnlockMemory failed on %s: %v", runtime.GOOS, err)
	}
}

func TestCrossPlatform_MemoryZeroing(t *testing.T) {
	key := securesend.DefaultKey()
	securesend.ZeroKey(key)

	if !bytes.Equal(key, make([]byte, securesend.KeySize)) {
		t.Errorf("key not zeroed: %x", key)
	}
	if bytes.Equal(securesend.DefaultKey(), key) {
		t.Error("zeroing a copy must not affect the compiled-in key")
	}
}

func TestCrossPlatform_PathHandling(t *testing.T) {
	names := []string{
		"simple.txt",
		"with spaces.txt",
		"unicode-ファイル.txt",
		filepath.Join("nested", "dir", "file.txt"),
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			srcPath := filepath.Join(tmpDir, name)
			if err := os.MkdirAll(filepath.Dir(srcPath), 0755); err != nil {
				t.Fatal(err)
			}
			plaintext := []byte("path test: " + name)
			if err := os.WriteFile(srcPath, plaintext, 0644); err != nil {
				t.Skipf("file system rejected %q: %v", name, err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			port, ch := startReceiver(t, ctx, securesend.ModeStream, securesend.DefaultKey())

			if _, err := securesend.SendFile(ctx, srcPath, "127.0.0.1", port, securesend.ModeStream, nil); err != nil {
				t.Fatalf("SendFile failed: %v", err)
			}
			got := <-ch
			if got.err != nil || !bytes.Equal(got.data, plaintext) {
				t.Errorf("round trip failed: %v", got.err)
			}
		})
	}
}

func TestCrossPlatform_UnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	srcPath := filepath.Join(t.TempDir(), "locked.txt")
	if err := os.WriteFile(srcPath, []byte("secret"), 0000); err != nil {
		t.Fatal(err)
	}

	_, err := securesend.SendFile(context.Background(), srcPath, "127.0.0.1", 9, securesend.ModeStream, nil)
	if !errors.Is(err, securesend.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected the permission error to be wrapped, got %v", err)
	}
}

func TestCrossPlatform_BuildTags(t *testing.T) {
	t.Logf("Running on GOOS=%s GOARCH=%s", runtime.GOOS, runtime.GOARCH)
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "windows":
	default:
		t.Logf("platform %s is untested", runtime.GOOS)
	}
}
