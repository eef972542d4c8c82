package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"sync"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// Cipher holds a single AEAD cipher behind a lock. It is the "one cipher
// behind a lock, passed by reference" capability described by the vault's
// concurrency model: callers pass a *Cipher into every storage call that
// needs to encrypt or decrypt, rather than reaching for a global instance.
//
// A zero-value Cipher is locked; arm it with Unlock.
type Cipher struct {
	mu   sync.Mutex
	key  []byte // held only while armed; overwritten on Lock.
	aead cipher.AEAD
}

// New returns a Cipher with no key installed.
func New() *Cipher {
	return &Cipher{}
}

// Unlock installs key as the active AEAD cipher. key must be exactly 32
// bytes, as produced by DeriveKey.
func (c *Cipher) Unlock(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	block, err := aes.NewCipher(key)
	if err != nil {
		return vaulterrors.NewKeyDerivationError(err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return vaulterrors.NewKeyDerivationError(err)
	}

	c.zeroizeLocked()

	c.key = append([]byte(nil), key...)
	c.aead = aead

	return nil
}

// Lock drops the active cipher and overwrites the held key material before
// releasing it.
func (c *Cipher) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.zeroizeLocked()
}

func (c *Cipher) zeroizeLocked() {
	for i := range c.key {
		c.key[i] = 0
	}

	c.key = nil
	c.aead = nil
}

// Locked reports whether no key is currently armed.
func (c *Cipher) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.aead == nil
}

// Encrypt draws a fresh nonce from the OS RNG, seals plaintext with no
// associated data, and returns nonce‖ciphertext‖tag.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.aead == nil {
		return nil, vaulterrors.ErrVaultLocked
	}

	nonce, err := RandBytes(NonceSizeGCM)
	if err != nil {
		return nil, vaulterrors.NewEncryptionError(err)
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)

	return out, nil
}

// Decrypt splits the nonce from payload and verifies-then-decrypts the
// remainder. Constant-time tag comparison is delegated to crypto/cipher's
// GCM implementation.
func (c *Cipher) Decrypt(payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.aead == nil {
		return nil, vaulterrors.ErrVaultLocked
	}

	if len(payload) < NonceSizeGCM {
		return nil, vaulterrors.NewDecryptionError(vaulterrors.DecryptionReasonInvalidLength, nil)
	}

	nonce, ciphertext := payload[:NonceSizeGCM], payload[NonceSizeGCM:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, vaulterrors.NewDecryptionError(vaulterrors.DecryptionReasonAuthFailed, err)
	}

	return plaintext, nil
}
