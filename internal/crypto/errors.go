/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"errors"
	"fmt"
	"os"
)

// Kind classifies a transfer failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindFileNotFound
	KindCryptoInit
	KindCryptoOperation
	KindConnect
	KindTransportWrite
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindFileNotFound:
		return "FileNotFoundError"
	case KindCryptoInit:
		return "CryptoInitError"
	case KindCryptoOperation:
		return "CryptoOperationError"
	case KindConnect:
		return "ConnectError"
	case KindTransportWrite:
		return "TransportWriteError"
	default:
		return "UnknownError"
	}
}

// Sentinels for errors.Is. A *TransferError matches the sentinel of its Kind.
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrCryptoInit      = errors.New("cipher initialization failed")
	ErrCryptoOperation = errors.New("cipher operation failed")
	ErrConnect         = errors.New("connect failed")
	ErrTransportWrite  = errors.New("transport write failed")

	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidPadding   = errors.New("invalid padding")
	ErrChunkSize        = errors.New("invalid chunk size")
	ErrContextCanceled  = errors.New("context canceled")
	ErrUnsupportedKind  = errors.New("unsupported transport kind")
	ErrIncompleteStream = errors.New("incomplete transfer")
)

func (k Kind) sentinel() error {
	switch k {
	case KindFileNotFound:
		return ErrFileNotFound
	case KindCryptoInit:
		return ErrCryptoInit
	case KindCryptoOperation:
		return ErrCryptoOperation
	case KindConnect:
		return ErrConnect
	case KindTransportWrite:
		return ErrTransportWrite
	default:
		return nil
	}
}

// TransferError represents a failure at one stage of a transfer
type TransferError struct {
	Kind     Kind   // Failure classification
	Op       string // Operation: "open", "encrypt", "dial", "write", etc.
	Path     string // File path or remote address being operated on
	ChunkNum int    // Chunk number if applicable (-1 if not a chunk operation)
	Err      error  // Underlying error
}

func (e *TransferError) Error() string {
	if e.ChunkNum >= 0 {
		return fmt.Sprintf("%s: %s %s (chunk %d): %v", e.Kind, e.Op, e.Path, e.ChunkNum, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *TransferError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewTransferError creates a new TransferError
func NewTransferError(kind Kind, op, path string, chunkNum int, err error) *TransferError {
	return &TransferError{
		Kind:     kind,
		Op:       op,
		Path:     path,
		ChunkNum: chunkNum,
		Err:      err,
	}
}

// KindOf returns the Kind of the first TransferError in err's chain.
func KindOf(err error) Kind {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// SanitizeError removes sensitive details for external consumption
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrInvalidKey):
		return fmt.Errorf("invalid encryption key")
	case errors.Is(err, ErrFileNotFound), errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("file not found")
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("insufficient permissions")
	case errors.Is(err, ErrCryptoInit):
		return fmt.Errorf("encryption failed")
	case errors.Is(err, ErrCryptoOperation), errors.Is(err, ErrInvalidPadding):
		return fmt.Errorf("cipher operation failed")
	case errors.Is(err, ErrConnect):
		return fmt.Errorf("could not connect to receiver")
	case errors.Is(err, ErrTransportWrite), errors.Is(err, ErrIncompleteStream):
		return fmt.Errorf("transfer interrupted")
	default:
		return fmt.Errorf("transfer failed")
	}
}

// WrapError adds context to an error
func WrapError(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
