/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package transfer drives one file transfer: read, encrypt, frame, send.
package transfer

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
	"github.com/gitrgoliveira/go-securesend/internal/transport"
	"github.com/gitrgoliveira/go-securesend/secure"
)

// Request names the file, the destination and the transport.
type Request struct {
	Path string
	Host string
	Port int
	Mode core.TransferMode
	// Key is the AES-128 key. nil selects the compiled-in key.
	Key []byte
}

// Addr returns host:port.
func (r Request) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Result describes a finished or aborted transfer.
type Result struct {
	TransferID     string
	Path           string
	Addr           string
	Mode           core.TransferMode
	PlaintextSize  int64
	CiphertextSize int64
	Chunks         int
	BytesSent      int64
	Checksum       string // hex SHA-256 of the plaintext, when enabled
	Duration       time.Duration
}

// SenderFactory opens the transport for one transfer.
type SenderFactory func(ctx context.Context, mode core.TransferMode, addr string, cfg *core.Config) (transport.Sender, error)

// Manager runs transfers. It holds no per-transfer state, so one Manager
// may run concurrent transfers; each gets its own buffers and socket.
type Manager struct {
	opts      []core.Option
	newSender SenderFactory
}

// NewManager returns a Manager applying opts to every transfer.
func NewManager(opts ...core.Option) *Manager {
	return &Manager{opts: opts, newSender: transport.New}
}

// WithSenderFactory replaces the transport constructor.
func (m *Manager) WithSenderFactory(f SenderFactory) *Manager {
	m.newSender = f
	return m
}

// Run performs one transfer. It never retries. On the datagram path a
// failure may leave chunks already on the wire with no abort signal.
// The returned Result is non-nil even on failure.
func (m *Manager) Run(ctx context.Context, req Request, opts ...core.Option) (*Result, error) {
	start := time.Now()
	res := &Result{
		TransferID: uuid.NewString(),
		Path:       req.Path,
		Addr:       req.Addr(),
		Mode:       req.Mode,
	}

	cfg := core.NewConfig(append(append([]core.Option{}, m.opts...), opts...)...)
	log := cfg.Logger.With("transfer_id", res.TransferID, "file", req.Path, "remote", res.Addr, "mode", req.Mode.String())

	err := m.run(ctx, req, cfg, res)
	res.Duration = time.Since(start)
	if err != nil {
		log.Error("transfer failed", "kind", crypto.KindOf(err).String(), "error", err, "bytes_sent", res.BytesSent)
		return res, err
	}
	log.Info("transfer complete",
		"plaintext_bytes", res.PlaintextSize,
		"ciphertext_bytes", res.CiphertextSize,
		"chunks", res.Chunks,
		"duration", res.Duration)
	return res, nil
}

func (m *Manager) run(ctx context.Context, req Request, cfg *core.Config, res *Result) error {
	if !req.Mode.IsValid() {
		return fmt.Errorf("%w: %q", crypto.ErrUnsupportedKind, req.Mode)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Whole-file load: the cipher runs over one in-memory blob.
	plaintext, err := os.ReadFile(req.Path) // #nosec G304 -- path provided by caller
	if err != nil {
		return crypto.NewTransferError(crypto.KindFileNotFound, "open", req.Path, -1, err)
	}
	defer secure.Zero(plaintext)
	res.PlaintextSize = int64(len(plaintext))

	if cfg.Checksum {
		res.Checksum = hex.EncodeToString(core.Checksum(plaintext))
	}

	key := req.Key
	if key == nil {
		key = core.DefaultKey()
		defer secure.Zero(key)
	}
	enc, err := core.NewEncryptor(key, core.WithAlgorithm(cfg.Algorithm))
	if err != nil {
		return err
	}
	defer enc.Destroy()

	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		return err
	}
	res.CiphertextSize = int64(len(ciphertext))
	cfg.Logger.Debug("data encrypted", "transfer_id", res.TransferID, "bytes", len(ciphertext))

	framer, err := core.NewFramer(ciphertext, req.Mode, cfg.ChunkSize)
	if err != nil {
		return err
	}

	userProgress := cfg.Progress
	cfg.Progress = func(p core.Progress) {
		res.BytesSent = p.Sent
		res.Chunks = p.Chunks
		if userProgress != nil {
			userProgress(p)
		}
	}

	sender, err := m.newSender(ctx, req.Mode, res.Addr, cfg)
	if err != nil {
		return err
	}
	defer sender.Close()

	return sender.Send(ctx, framer, len(ciphertext))
}

// Run performs one transfer with a default Manager.
func Run(ctx context.Context, req Request, opts ...core.Option) (*Result, error) {
	return NewManager().Run(ctx, req, opts...)
}
