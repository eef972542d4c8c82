package vault

import (
	"context"
	"os"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// UpdateMasterKey rotates the vault from currentKey to newKey, optionally
// changing the KDF strength. It is not transactional across catalogue and
// blobs: if the process dies mid-rotation, items already rewritten under
// the new key become unreadable under the old one while unrewritten items
// remain readable under the old key. Persisting the new verification token
// only after every item succeeds means a crash before that point still
// leaves the vault openable with the old password.
func (c *Controller) UpdateMasterKey(ctx context.Context, currentKey, newKey string, newStrength vaultcrypto.Strength) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	oldKey, err := c.verifyPassword(ctx, currentKey)
	if err != nil {
		return err
	}
	defer zero(oldKey)

	if len(newKey) == 0 {
		return vaulterrors.ErrEmptyPassword
	}

	currentStrength, err := c.store.KDFStrength(ctx)
	if err != nil {
		return err
	}

	if !newStrength.Valid() {
		newStrength = currentStrength
	}

	newSalt, err := vaultcrypto.GenerateSalt()
	if err != nil {
		return vaulterrors.NewKeyDerivationError(err)
	}

	newKeyBytes, err := vaultcrypto.DeriveKey([]byte(newKey), newSalt, newStrength)
	if err != nil {
		return err
	}
	defer zero(newKeyBytes)

	oldCipher := c.cipher
	if oldCipher.Locked() {
		oldCipher = vaultcrypto.New()
		if err := oldCipher.Unlock(oldKey); err != nil {
			return err
		}
		defer oldCipher.Lock()
	}

	newCipher := vaultcrypto.New()
	if err := newCipher.Unlock(newKeyBytes); err != nil {
		return err
	}

	if err := c.rewriteAllItems(ctx, oldCipher, newCipher); err != nil {
		newCipher.Lock()
		return wrapf("update master key: rewrite items", err)
	}

	if err := c.rewriteVerificationToken(oldCipher, newCipher); err != nil {
		newCipher.Lock()
		return wrapf("update master key: rewrite verification token", err)
	}

	if err := os.WriteFile(c.layout.SaltFile, newSalt, 0o600); err != nil {
		newCipher.Lock()
		return vaulterrors.NewStorageError(err)
	}

	if err := c.store.SetKDFStrength(ctx, newStrength); err != nil {
		newCipher.Lock()
		return err
	}

	c.cipher.Lock()
	c.cipher = newCipher

	return nil
}

// rewriteAllItems re-encrypts every catalogue row's ciphertext columns
// under newCipher, and, for non-folder items, re-encrypts the backing blob
// in place.
func (c *Controller) rewriteAllItems(ctx context.Context, oldCipher, newCipher *vaultcrypto.Cipher) error {
	items, err := c.store.GetAllItemsRecursive(ctx, oldCipher)
	if err != nil {
		return err
	}

	for _, item := range items {
		if !item.IsFolder() && len(item.DataPath) > 0 {
			if err := c.rewriteBlob(item.DataPath, oldCipher, newCipher); err != nil {
				return err
			}
		}

		if err := c.store.UpdateItem(ctx, newCipher, item); err != nil {
			return err
		}
	}

	return nil
}

func (c *Controller) rewriteBlob(dataPath string, oldCipher, newCipher *vaultcrypto.Cipher) error {
	ciphertext, err := c.blobs.Read(dataPath)
	if err != nil {
		return err
	}

	plaintext, err := oldCipher.Decrypt(ciphertext)
	if err != nil {
		return err
	}

	newCiphertext, err := newCipher.Encrypt(plaintext)
	if err != nil {
		return err
	}

	return c.blobs.Write(dataPath, newCiphertext)
}

func (c *Controller) rewriteVerificationToken(oldCipher, newCipher *vaultcrypto.Cipher) error {
	encryptedToken, err := os.ReadFile(c.layout.VerifyFile)
	if err != nil {
		return vaulterrors.NewStorageError(err)
	}

	token, err := oldCipher.Decrypt(encryptedToken)
	if err != nil {
		return err
	}

	newEncryptedToken, err := newCipher.Encrypt(token)
	if err != nil {
		return err
	}

	return os.WriteFile(c.layout.VerifyFile, newEncryptedToken, 0o600)
}
