package vault

import (
	"context"
	"os"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// DeleteVault requires the current password, locks the cipher, and removes
// the entire vault directory tree.
func (c *Controller) DeleteVault(ctx context.Context, masterKey string) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	key, err := c.verifyPassword(ctx, masterKey)
	if err != nil {
		return err
	}
	zero(key)

	c.cipher.Lock()

	if err := c.db.Close(); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	if err := os.RemoveAll(c.layout.Root); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	return nil
}

// Reset wipes catalogue rows, meta rows, the data directory, salt, and
// verify, leaving the vault in the uninitialized state. Unlike DeleteVault
// it does not require a password: it is the documented recovery path from
// a vault left in an inconsistent state (e.g. after a crash mid-rotation).
// It removes the whole vault root directory and then recreates it with an
// empty catalogue and blob directory, so the Controller stays usable.
func (c *Controller) Reset(ctx context.Context) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	c.cipher.Lock()

	if err := c.db.Close(); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	if err := os.RemoveAll(c.layout.Root); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	if err := c.layout.EnsureRoot(); err != nil {
		return err
	}

	db, store, err := reopenCatalogue(c.layout)
	if err != nil {
		return err
	}

	blobs, err := reopenBlobs(c.layout, c.logger)
	if err != nil {
		return err
	}

	c.db = db
	c.store = store
	c.blobs = blobs

	return nil
}
