// Package vaultconfig loads the non-secret host configuration for a vault
// installation: KDF strength defaults, lockout policy, and vault storage
// location. It never holds key material.
package vaultconfig

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
)

const (
	// envConfigPathKey overrides the default config file location.
	envConfigPathKey = "VAULT_CONFIG_PATH"

	defaultConfigName = ".vaultrc.toml"
)

type ConfigError struct {
	Opt string
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + strings.Join([]string{e.Opt, e.Err.Error()}, ": ")
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileConfig is the full structure of the on-disk configuration file.
//
//nolint:tagalign
type FileConfig struct {
	Vault   VaultSection   `toml:"vault" comment:"Vault storage and KDF defaults" json:"vault"`
	Lockout LockoutSection `toml:"lockout" comment:"Brute-force lockout policy" json:"lockout"`

	path string // path to the loaded config file; empty if none was used.
}

// VaultSection holds vault storage and KDF defaults.
//
//nolint:tagalign,tagliatelle
type VaultSection struct {
	Path            string `toml:"path,commented" comment:"Vault directory path (default: OS user config dir)" json:"path,omitempty"`
	DefaultStrength string `toml:"default_strength,commented" comment:"Default Argon2id strength profile: Fast, Recommended, or Paranoid" json:"default_strength,omitempty"`
}

// LockoutSection holds brute-force lockout defaults. They are only parsed
// and validated here; vault initialization does not read them and writes
// the vaultdb package defaults to the meta table instead.
//
//nolint:tagalign,tagliatelle
type LockoutSection struct {
	Threshold      *int `toml:"threshold,commented" comment:"Consecutive failed unlock attempts before cooldown (default: 5)" json:"threshold,omitempty"`
	CooldownSecond *int `toml:"cooldown_seconds,commented" comment:"Cooldown duration in seconds after lockout (default: 30)" json:"cooldown_seconds,omitempty"`
}

func newFileConfig() *FileConfig {
	return &FileConfig{}
}

// LoadFileConfig loads the config from path, or the default location when
// path is empty. A missing default-location file is not an error.
func LoadFileConfig(path string) (*FileConfig, error) {
	defaultPath, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}

	configPath := cmp.Or(path, defaultPath)

	c, err := parseFileConfig(configPath)
	if err != nil {
		if len(path) == 0 && errors.Is(err, fs.ErrNotExist) { //nolint:revive // clearer with explicit fallback logic
			c = newFileConfig()
		} else {
			return nil, err
		}
	} else {
		c.path = configPath
	}

	return c, c.validate()
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: user home dir: %w", err)
	}

	path := filepath.Join(home, defaultConfigName)
	if p, ok := os.LookupEnv(envConfigPathKey); ok {
		path = p
	}

	return path, nil
}

func parseFileConfig(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: stat file: %w", err)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	config := newFileConfig()
	if err := toml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	return config, nil
}

func (c *FileConfig) validate() error {
	if c == nil {
		return &ConfigError{Err: errors.New("cannot validate a nil config")}
	}

	if s := c.Vault.DefaultStrength; s != "" && !vaultcrypto.Strength(s).Valid() {
		return &ConfigError{Opt: "vault.default_strength", Err: fmt.Errorf("unknown strength profile %q", s)}
	}

	if c.Lockout.Threshold != nil && *c.Lockout.Threshold <= 0 {
		return &ConfigError{Opt: "lockout.threshold", Err: errors.New("must be a positive integer")}
	}

	if c.Lockout.CooldownSecond != nil && *c.Lockout.CooldownSecond < 0 {
		return &ConfigError{Opt: "lockout.cooldown_seconds", Err: errors.New("must be zero or a positive integer")}
	}

	return nil
}

// StrengthOrDefault returns the configured default strength, or def when
// unset or invalid.
func (c *FileConfig) StrengthOrDefault(def vaultcrypto.Strength) vaultcrypto.Strength {
	if c == nil || c.Vault.DefaultStrength == "" {
		return def
	}

	s := vaultcrypto.Strength(c.Vault.DefaultStrength)
	if !s.Valid() {
		return def
	}

	return s
}

// LockoutThreshold returns the configured threshold, or def when unset.
func (c *FileConfig) LockoutThreshold(def int) int {
	if c == nil || c.Lockout.Threshold == nil {
		return def
	}

	return *c.Lockout.Threshold
}

// LockoutCooldownSeconds returns the configured cooldown, or def when unset.
func (c *FileConfig) LockoutCooldownSeconds(def int) int {
	if c == nil || c.Lockout.CooldownSecond == nil {
		return def
	}

	return *c.Lockout.CooldownSecond
}

// Path returns the file path the config was loaded from, or "" if defaults
// were used without a file on disk.
func (c *FileConfig) Path() string {
	if c == nil {
		return ""
	}

	return c.path
}
