package vaultcrypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func TestCipher_RoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	c := vaultcrypto.New()
	require.True(t, c.Locked())
	require.NoError(t, c.Unlock(key))
	require.False(t, c.Locked())

	plaintext := []byte("hello, vault")

	ct1, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	ct2, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2, "two encryptions of the same plaintext must use distinct nonces")

	got1, err := c.Decrypt(ct1)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got1)

	got2, err := c.Decrypt(ct2)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got2)
}

func TestCipher_LockedOperationsFail(t *testing.T) {
	c := vaultcrypto.New()

	_, err := c.Encrypt([]byte("x"))
	require.ErrorIs(t, err, vaulterrors.ErrVaultLocked)

	_, err = c.Decrypt([]byte("0123456789012"))
	require.ErrorIs(t, err, vaulterrors.ErrVaultLocked)
}

func TestCipher_DecryptRejectsShortPayload(t *testing.T) {
	key := make([]byte, 32)

	c := vaultcrypto.New()
	require.NoError(t, c.Unlock(key))

	_, err := c.Decrypt([]byte("short"))
	require.Error(t, err)
}

func TestCipher_LockZeroizesKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = 0xAB
	}

	c := vaultcrypto.New()
	require.NoError(t, c.Unlock(key))

	c.Lock()
	assert.True(t, c.Locked())

	_, err := c.Encrypt([]byte("x"))
	require.Error(t, err)
}

func TestCipher_TamperedCiphertextFailsAuthentication(t *testing.T) {
	key := make([]byte, 32)

	c := vaultcrypto.New()
	require.NoError(t, c.Unlock(key))

	ct, err := c.Encrypt([]byte("secret"))
	require.NoError(t, err)

	ct[len(ct)-1] ^= 0xFF

	_, err = c.Decrypt(ct)
	require.Error(t, err)
}
