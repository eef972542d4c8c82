// Package vault implements the Vault Controller: the sole façade over the
// Crypto, Metadata Store, and Blob Store components, plus the Rotation
// Engine for master-key updates.
package vault

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"

	"github.com/ladzaretti/vaultcore/internal/blobstore"
	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/internal/vaultdb"
	"github.com/ladzaretti/vaultcore/internal/vaultpath"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// VaultItem re-exports the Metadata Store's row type at the Controller
// boundary, so callers never need to import internal/vaultdb directly.
type VaultItem = vaultdb.VaultItem

// SortOrder re-exports the Metadata Store's sort selector.
type SortOrder = vaultdb.SortOrder

const (
	SortByNameAsc     = vaultdb.SortByNameAsc
	SortByNameDesc    = vaultdb.SortByNameDesc
	SortByCreatedAsc  = vaultdb.SortByCreatedAsc
	SortByCreatedDesc = vaultdb.SortByCreatedDesc
	SortByUpdatedAsc  = vaultdb.SortByUpdatedAsc
	SortByUpdatedDesc = vaultdb.SortByUpdatedDesc
)

// Status reports the Controller's current lifecycle state.
type Status struct {
	Initialized bool
	Unlocked    bool
	Strength    *vaultcrypto.Strength
}

// Controller is the single entry point into a vault. Every operation that
// touches both storage and the cipher acquires storageMu first and relies
// on the Cipher's own internal lock for the crypto side, preserving the
// mandated "storage before crypto" lock ordering without a second explicit
// mutex.
type Controller struct {
	layout vaultpath.Layout
	db     *sql.DB
	store  *vaultdb.Store
	blobs  *blobstore.Store
	cipher *vaultcrypto.Cipher
	logger zerolog.Logger

	storageMu sync.Mutex
}

// Open opens (creating if necessary) the vault rooted at root. The
// returned Controller starts locked; call Initialize or Unlock before any
// item operation.
func Open(root string, logger zerolog.Logger) (*Controller, error) {
	layout := vaultpath.NewLayout(root)

	if err := layout.EnsureRoot(); err != nil {
		return nil, err
	}

	db, store, err := reopenCatalogue(layout)
	if err != nil {
		return nil, err
	}

	blobs, err := reopenBlobs(layout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Controller{
		layout: layout,
		db:     db,
		store:  store,
		blobs:  blobs,
		cipher: vaultcrypto.New(),
		logger: logger,
	}, nil
}

func reopenCatalogue(layout vaultpath.Layout) (*sql.DB, *vaultdb.Store, error) {
	db, err := sql.Open("sqlite", layout.DatabaseDB)
	if err != nil {
		return nil, nil, vaulterrors.NewStorageError(err)
	}

	// PRAGMA foreign_keys is per-connection; pin the pool to a single
	// connection so it stays in effect for every query issued through db.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, nil, vaulterrors.NewStorageError(err)
	}

	if err := os.Chmod(layout.DatabaseDB, 0o600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, nil, vaulterrors.NewStorageError(err)
	}

	store, err := vaultdb.Open(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, store, nil
}

func reopenBlobs(layout vaultpath.Layout, logger zerolog.Logger) (*blobstore.Store, error) {
	return blobstore.Open(layout.BlobDir, logger)
}

// Close releases the underlying database handle.
func (c *Controller) Close() error {
	c.cipher.Lock()
	return c.db.Close()
}

// Status reports whether the vault has been initialized and whether the
// cipher is currently armed.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	status := Status{
		Initialized: c.layout.Exists(),
		Unlocked:    !c.cipher.Locked(),
	}

	if status.Unlocked {
		strength, err := c.store.KDFStrength(ctx)
		if err != nil {
			return Status{}, err
		}

		status.Strength = &strength
	}

	return status, nil
}

// BruteForceConfig re-exports the Metadata Store's brute-force policy type
// at the Controller boundary.
type BruteForceConfig = vaultdb.BruteForceConfig

// GetBruteForceConfig returns the vault's current brute-force lockout
// policy: whether it is armed, the attempt threshold, and the cooldown
// duration.
func (c *Controller) GetBruteForceConfig(ctx context.Context) (BruteForceConfig, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	cfg, err := c.store.BruteForceConfig(ctx)
	if err != nil {
		return BruteForceConfig{}, wrapf("get brute force config", err)
	}

	return cfg, nil
}

// SetBruteForceConfig overwrites the vault's brute-force lockout policy.
func (c *Controller) SetBruteForceConfig(ctx context.Context, cfg BruteForceConfig) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	return wrapf("set brute force config", c.store.SetBruteForceConfig(ctx, cfg))
}

// Initialize arms the vault for first use: generates a salt, derives a key
// from masterKey under strength, arms the cipher, persists salt/strength/
// brute-force defaults, and stores an encrypted verification token.
func (c *Controller) Initialize(ctx context.Context, masterKey string, strength vaultcrypto.Strength) error {
	if len(masterKey) == 0 {
		return vaulterrors.ErrEmptyPassword
	}

	if !strength.Valid() {
		strength = vaultcrypto.DefaultStrength
	}

	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if c.layout.Exists() {
		return vaulterrors.ErrVaultAlreadyInitialized
	}

	salt, err := vaultcrypto.GenerateSalt()
	if err != nil {
		return vaulterrors.NewKeyDerivationError(err)
	}

	key, err := vaultcrypto.DeriveKey([]byte(masterKey), salt, strength)
	if err != nil {
		return err
	}
	defer zero(key)

	if err := c.cipher.Unlock(key); err != nil {
		return err
	}

	if err := os.WriteFile(c.layout.SaltFile, salt, 0o600); err != nil {
		c.cipher.Lock()
		return vaulterrors.NewStorageError(err)
	}

	if err := c.store.InitializeMeta(ctx, strength); err != nil {
		c.cipher.Lock()
		return err
	}

	token, err := vaultcrypto.GenerateVerificationToken()
	if err != nil {
		c.cipher.Lock()
		return vaulterrors.NewKeyDerivationError(err)
	}

	encryptedToken, err := c.cipher.Encrypt(token)
	if err != nil {
		c.cipher.Lock()
		return err
	}

	if err := os.WriteFile(c.layout.VerifyFile, encryptedToken, 0o600); err != nil {
		c.cipher.Lock()
		return vaulterrors.NewStorageError(err)
	}

	return nil
}

// Unlock derives the key from masterKey and the stored salt/strength, then
// accepts it only if it successfully decrypts the stored verification
// token. On failure the cipher is left locked and the attempt is recorded.
func (c *Controller) Unlock(ctx context.Context, masterKey string) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if !c.layout.Exists() {
		return vaulterrors.ErrVaultNotInitialized
	}

	key, err := c.deriveKeyFromStoredSalt(ctx, masterKey)
	if err != nil {
		c.cipher.Lock()
		return err
	}
	defer zero(key)

	if err := c.verifyKeyAgainstToken(key); err != nil {
		c.cipher.Lock()

		if _, recErr := c.store.RecordFailedAttempt(ctx); recErr != nil {
			c.logger.Warn().Err(recErr).Msg("vault: failed to record failed unlock attempt")
		}

		return err
	}

	if err := c.cipher.Unlock(key); err != nil {
		return err
	}

	if err := c.store.ResetFailedAttempts(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("vault: failed to reset failed attempt counter")
	}

	return nil
}

// Lock drops the active cipher. It is idempotent.
func (c *Controller) Lock() {
	c.cipher.Lock()
}

func (c *Controller) deriveKeyFromStoredSalt(ctx context.Context, password string) ([]byte, error) {
	salt, err := os.ReadFile(c.layout.SaltFile)
	if err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	strength, err := c.store.KDFStrength(ctx)
	if err != nil {
		return nil, err
	}

	return vaultcrypto.DeriveKey([]byte(password), salt, strength)
}

// verifyKeyAgainstToken arms a throwaway cipher with key and attempts to
// decrypt the stored verification token, returning ErrInvalidMasterKey on
// any failure. The throwaway cipher is always zeroized before returning.
func (c *Controller) verifyKeyAgainstToken(key []byte) error {
	encryptedToken, err := os.ReadFile(c.layout.VerifyFile)
	if err != nil {
		return vaulterrors.NewStorageError(err)
	}

	throwaway := vaultcrypto.New()
	defer throwaway.Lock()

	if err := throwaway.Unlock(key); err != nil {
		return err
	}

	if _, err := throwaway.Decrypt(encryptedToken); err != nil {
		return vaulterrors.ErrInvalidMasterKey
	}

	return nil
}

// verifyPassword is the password gate used by export-decrypted,
// delete-vault, and master-key rotation: it always re-derives the key and
// re-tests it against the verification token, never trusting that the
// Controller's cipher is already armed.
func (c *Controller) verifyPassword(ctx context.Context, password string) ([]byte, error) {
	key, err := c.deriveKeyFromStoredSalt(ctx, password)
	if err != nil {
		return nil, err
	}

	if err := c.verifyKeyAgainstToken(key); err != nil {
		zero(key)
		return nil, err
	}

	return key, nil
}

func (c *Controller) requireUnlocked() error {
	if c.cipher.Locked() {
		return vaulterrors.ErrVaultLocked
	}

	return nil
}

// newArmedCipher returns a fresh Cipher armed with key, for callers (export,
// rotation) that need a throwaway cipher distinct from the Controller's
// live one.
func newArmedCipher(key []byte) (*vaultcrypto.Cipher, error) {
	cipher := vaultcrypto.New()
	if err := cipher.Unlock(key); err != nil {
		return nil, err
	}

	return cipher, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func wrapf(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("vault: %s: %w", op, err)
}
