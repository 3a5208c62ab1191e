/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration for goboard: a YAML file in the
// user scope, merged over defaults, with GBD_* environment variables as
// read-only overrides. Secrets never go into the YAML file; they live in the
// OS keychain.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	applog "goboard/internal/log"
)

// config_version: bump when the structure changes in a backward-incompatible way.
const currentConfigVersion = 1

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type SnapConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
	Edges     bool    `yaml:"edges"`
	Centers   bool    `yaml:"centers"`
}

// BoardConfig holds the interaction tunables.
type BoardConfig struct {
	MinWidth  float64    `yaml:"min_width"`
	MinHeight float64    `yaml:"min_height"`
	MinScale  float64    `yaml:"min_scale"`
	MaxScale  float64    `yaml:"max_scale"`
	ZoomStep  float64    `yaml:"zoom_step"`
	Snap      SnapConfig `yaml:"snap"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "postgres"
	// DSN for postgres. The password is not stored here; it lives in the OS keychain.
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Options converts the logging section into logger options.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Board         BoardConfig   `yaml:"board"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: currentConfigVersion,
		Board: BoardConfig{
			MinWidth: 60, MinHeight: 30,
			MinScale: 0.1, MaxScale: 4, ZoomStep: 0.05,
			Snap: SnapConfig{Enabled: false, Threshold: 6, Edges: true, Centers: false},
		},
		Storage: StorageConfig{Driver: DriverSQLite},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvStorageDriver = "GBD_STORAGE_DRIVER"
	EnvPGDSN         = "GBD_PG_DSN"
	EnvSnap          = "GBD_SNAP"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GBD_LOG_LEVEL"
	EnvLogFormat = "GBD_LOG_FORMAT"
	EnvLogSource = "GBD_LOG_SOURCE"
	EnvLogFile   = "GBD_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "goboard"
	keyringDBPass  = "database_password"
)

// SecretStore abstracts the keyring, so we can stub in tests.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var secrets SecretStore = osKeyring{}

// SetSecretStore swaps the keyring backend and returns the previous one.
func SetSecretStore(s SecretStore) SecretStore {
	prev := secrets
	secrets = s
	return prev
}

// DatabasePassword returns the stored PostgreSQL password, or "" if none is set.
func DatabasePassword() (string, error) {
	pw, err := secrets.Get(keyringService, keyringDBPass)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return pw, err
}

// SetDatabasePassword stores the PostgreSQL password; "" removes it.
func SetDatabasePassword(pw string) error {
	if pw == "" {
		err := secrets.Delete(keyringService, keyringDBPass)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return secrets.Set(keyringService, keyringDBPass, pw)
}

// ResolveDSN returns s.DSN with the keychain password filled in when the DSN
// is a URL without one. Key/value DSNs are returned unchanged.
func (s StorageConfig) ResolveDSN() (string, error) {
	dsn := strings.TrimSpace(s.DSN)
	if dsn == "" {
		return "", errors.New("storage.dsn is empty")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if u.User == nil {
		return dsn, nil
	}
	if _, has := u.User.Password(); has {
		return dsn, nil
	}
	pw, err := DatabasePassword()
	if err != nil {
		return "", fmt.Errorf("read database password: %w", err)
	}
	if pw != "" {
		u.User = url.UserPassword(u.User.Username(), pw)
	}
	return u.String(), nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "goboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "goboard")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "goboard")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "goboard")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. A malformed file is reported but defaults are still returned.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	var perr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			perr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, perr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile is Save for an explicit path.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// board: zero means "not set" for numbers
	setPos := func(d *float64, v float64) {
		if v > 0 {
			*d = v
		}
	}
	setPos(&dst.Board.MinWidth, src.Board.MinWidth)
	setPos(&dst.Board.MinHeight, src.Board.MinHeight)
	setPos(&dst.Board.MinScale, src.Board.MinScale)
	setPos(&dst.Board.MaxScale, src.Board.MaxScale)
	setPos(&dst.Board.ZoomStep, src.Board.ZoomStep)
	setPos(&dst.Board.Snap.Threshold, src.Board.Snap.Threshold)
	// booleans: copy directly from src (file) so user preferences persist,
	// unless the file has no snap section at all
	if src.Board.Snap != (SnapConfig{}) {
		dst.Board.Snap.Enabled = src.Board.Snap.Enabled
		dst.Board.Snap.Edges = src.Board.Snap.Edges
		dst.Board.Snap.Centers = src.Board.Snap.Centers
	}
	// storage
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Driver)); v != "" {
		dst.Storage.Driver = v
	}
	if v := strings.TrimSpace(src.Storage.DSN); v != "" {
		dst.Storage.DSN = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPGDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnap)); v != "" {
		// GBD_SNAP=1 enables snapping; a number also sets the threshold.
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 1 {
			cfg.Board.Snap.Enabled = true
			cfg.Board.Snap.Threshold = n
		} else {
			cfg.Board.Snap.Enabled = truthy(v)
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "storage.driver":
		name = EnvStorageDriver
	case "storage.dsn":
		name = EnvPGDSN
	case "board.snap.enabled", "board.snap.threshold":
		name = EnvSnap
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}

// Validate reports settings the board cannot run with.
func (c AppConfig) Validate() error {
	b := c.Board
	switch {
	case b.MinWidth < 60 || b.MinHeight < 30:
		return fmt.Errorf("board: minimum card size cannot go below 60x30, got %vx%v", b.MinWidth, b.MinHeight)
	case b.MinScale <= 0 || b.MaxScale < b.MinScale:
		return fmt.Errorf("board: invalid scale range [%v, %v]", b.MinScale, b.MaxScale)
	case b.ZoomStep <= 0:
		return fmt.Errorf("board: zoom_step must be positive, got %v", b.ZoomStep)
	}
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage: postgres driver needs a dsn")
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	return nil
}
