package vaultcrypto

import (
	"crypto/rand"
	"io"
)

const (
	// SaltSize is the fixed size, in bytes, of a KDF salt.
	SaltSize = 16

	// NonceSizeGCM is the size, in bytes, of an AES-GCM nonce.
	NonceSizeGCM = 12

	// VerificationTokenSize is the size, in bytes, of the random token
	// encrypted at initialization time to later prove a password is correct.
	VerificationTokenSize = 32
)

// RandBytes generates a slice of cryptographically secure
// random bytes of the specified length.
func RandBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateSalt returns a fresh 16-byte KDF salt from the OS RNG.
func GenerateSalt() ([]byte, error) {
	return RandBytes(SaltSize)
}

// GenerateVerificationToken returns a fresh 32-byte random token from the
// OS RNG, to be encrypted and stored as the vault's unlock oracle.
func GenerateVerificationToken() ([]byte, error) {
	return RandBytes(VerificationTokenSize)
}
