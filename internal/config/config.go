/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gitrgoliveira/go-securesend/internal/core"
)

// Environment variable names.
const (
	EnvKey         = "SECURESEND_KEY"
	EnvPassphrase  = "SECURESEND_PASSPHRASE"
	EnvSalt        = "SECURESEND_SALT"
	EnvSettleDelay = "SECURESEND_SETTLE_DELAY"
	EnvChunkDelay  = "SECURESEND_CHUNK_DELAY"
	EnvDialTimeout = "SECURESEND_DIAL_TIMEOUT"
	EnvLogFile     = "SECURESEND_LOG_FILE"
	EnvLogLevel    = "SECURESEND_LOG_LEVEL"
	EnvChecksum    = "SECURESEND_CHECKSUM"
	EnvNoColor     = "SECURESEND_NO_COLOR"
)

// KeySource records where the cipher key came from. The key itself is never logged.
type KeySource string

const (
	KeySourceDefault    KeySource = "default"
	KeySourceHex        KeySource = "hex"
	KeySourcePassphrase KeySource = "passphrase"
)

// Config holds process settings. Fields are unexported to prevent modification.
type Config struct {
	key         []byte
	keySource   KeySource
	settleDelay time.Duration
	chunkDelay  time.Duration
	dialTimeout time.Duration
	logFile     string
	logLevel    slog.Level
	checksum    bool
	noColor     bool
}

// Load reads files (default ".env") into the environment without overriding
// variables already set, then builds the Config. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		keySource:   KeySourceDefault,
		settleDelay: core.DefaultSettleDelay,
		chunkDelay:  core.DefaultChunkDelay,
		logLevel:    slog.LevelInfo,
		logFile:     os.Getenv(EnvLogFile),
	}

	var err error
	if cfg.settleDelay, err = durationEnv(EnvSettleDelay, cfg.settleDelay); err != nil {
		return nil, err
	}
	if cfg.chunkDelay, err = durationEnv(EnvChunkDelay, cfg.chunkDelay); err != nil {
		return nil, err
	}
	if cfg.dialTimeout, err = durationEnv(EnvDialTimeout, 0); err != nil {
		return nil, err
	}
	if cfg.checksum, err = boolEnv(EnvChecksum); err != nil {
		return nil, err
	}
	if cfg.noColor, err = boolEnv(EnvNoColor); err != nil {
		return nil, err
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if err := cfg.logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if err := cfg.loadKey(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadKey() error {
	hexKey := os.Getenv(EnvKey)
	pass := os.Getenv(EnvPassphrase)

	switch {
	case hexKey != "" && pass != "":
		return fmt.Errorf("set only one of %s and %s", EnvKey, EnvPassphrase)
	case hexKey != "":
		key, err := core.ParseKeyHex(hexKey)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvKey, err)
		}
		c.key, c.keySource = key, KeySourceHex
	case pass != "":
		salt, err := hex.DecodeString(strings.TrimSpace(os.Getenv(EnvSalt)))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSalt, err)
		}
		key, err := core.DeriveKeyArgon2([]byte(pass), salt,
			core.DefaultArgon2Time, core.DefaultArgon2Memory, core.DefaultArgon2Threads, core.DefaultKeySize)
		if err != nil {
			return fmt.Errorf("derive key: %w", err)
		}
		c.key, c.keySource = key, KeySourcePassphrase
	default:
		c.key = core.DefaultKey()
	}
	return nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return d, nil
}

func boolEnv(name string) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// Getter methods (immutable from outside)

// Key returns a copy of the cipher key.
func (c *Config) Key() []byte {
	return append([]byte(nil), c.key...)
}

func (c *Config) KeySource() KeySource {
	return c.keySource
}

func (c *Config) SettleDelay() time.Duration {
	return c.settleDelay
}

func (c *Config) ChunkDelay() time.Duration {
	return c.chunkDelay
}

func (c *Config) DialTimeout() time.Duration {
	return c.dialTimeout
}

func (c *Config) LogFile() string {
	return c.logFile
}

func (c *Config) LogLevel() slog.Level {
	return c.logLevel
}

func (c *Config) Checksum() bool {
	return c.checksum
}

func (c *Config) NoColor() bool {
	return c.noColor
}

// Options converts the settings into sender options.
func (c *Config) Options() []core.Option {
	return []core.Option{
		core.WithSettleDelay(c.settleDelay),
		core.WithChunkDelay(c.chunkDelay),
		core.WithDialTimeout(c.dialTimeout),
		core.WithChecksum(c.checksum),
	}
}
