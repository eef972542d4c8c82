package vaultcrypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// DeriveKey derives a 32-byte key from password and salt using Argon2id,
// version 1.3, with the cost parameters fixed by strength. Salt is passed
// through to Argon2id unchanged; no hashing or encoding step may alter it,
// so two implementations that agree on (password, salt, strength) always
// agree on the derived key.
func DeriveKey(password []byte, salt []byte, strength Strength) ([]byte, error) {
	params, err := strength.Params()
	if err != nil {
		return nil, vaulterrors.NewKeyDerivationError(err)
	}

	if len(salt) != SaltSize {
		return nil, vaulterrors.NewKeyDerivationError(
			fmt.Errorf("salt must be exactly %d bytes, got %d", SaltSize, len(salt)))
	}

	key := argon2.IDKey(password, salt, params.Iterations, params.MemoryKiB, params.Parallelism, params.KeyLen)

	return key, nil
}
