// Package vaultpath resolves the on-disk root directory a vault lives in.
package vaultpath

import (
	"os"
	"path/filepath"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// envVaultPath overrides vault root resolution when set, taking precedence
// over the per-user config directory default.
const envVaultPath = "VAULT_PATH"

// defaultDirName is the directory created under the host's per-user config
// directory when envVaultPath is unset.
const defaultDirName = "vault"

// Resolve returns the vault root directory: $VAULT_PATH if set, otherwise
// a "vault" directory under the OS's per-user config directory (e.g.
// ~/.config/vault on Linux). It does not create the directory.
func Resolve() (string, error) {
	if p := os.Getenv(envVaultPath); len(p) > 0 {
		return p, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", vaulterrors.NewInternalError("resolve vault path: " + err.Error())
	}

	return filepath.Join(configDir, defaultDirName), nil
}

// Layout names the fixed set of files and directories under a vault root.
type Layout struct {
	Root        string
	DatabaseDB  string // catalogue (sqlite)
	SaltFile    string // KDF salt
	VerifyFile  string // verification-token ciphertext
	BlobDir     string // blob store root
}

// NewLayout builds the fixed Layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{
		Root:       root,
		DatabaseDB: filepath.Join(root, "vault.db"),
		SaltFile:   filepath.Join(root, "salt"),
		VerifyFile: filepath.Join(root, "verify"),
		BlobDir:    filepath.Join(root, "data"),
	}
}

// Exists reports whether the vault has already been initialized: both the
// salt and verify files are present.
func (l Layout) Exists() bool {
	if _, err := os.Stat(l.SaltFile); err != nil {
		return false
	}

	if _, err := os.Stat(l.VerifyFile); err != nil {
		return false
	}

	return true
}

// EnsureRoot creates the vault root and blob directory if missing.
func (l Layout) EnsureRoot() error {
	if err := os.MkdirAll(l.Root, 0o700); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	if err := os.MkdirAll(l.BlobDir, 0o700); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	return nil
}
