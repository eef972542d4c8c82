package vault_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/vault"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func newTestController(t *testing.T) *vault.Controller {
	t.Helper()

	root := filepath.Join(t.TempDir(), "vault")

	c, err := vault.Open(root, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestController_Status_Uninitialized(t *testing.T) {
	c := newTestController(t)

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	require.False(t, status.Initialized)
	require.False(t, status.Unlocked)
}

func TestController_InitializeAndStatus(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, "hunter2", vaultcrypto.Fast))

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Initialized)
	require.True(t, status.Unlocked)
	require.NotNil(t, status.Strength)
	require.Equal(t, vaultcrypto.Fast, *status.Strength)
}

func TestController_BruteForceConfig_GetAndSet(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, "hunter2", vaultcrypto.Fast))

	cfg, err := c.GetBruteForceConfig(ctx)
	require.NoError(t, err)
	require.True(t, cfg.Enabled)

	updated := vault.BruteForceConfig{Enabled: false, MaxAttempts: 3, LockoutDurationMinutes: 2}
	require.NoError(t, c.SetBruteForceConfig(ctx, updated))

	got, err := c.GetBruteForceConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, updated, got)
}

func TestController_Initialize_RejectsDoubleInit(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, "hunter2", vaultcrypto.Fast))

	err := c.Initialize(ctx, "hunter2", vaultcrypto.Fast)
	require.ErrorIs(t, err, vaulterrors.ErrVaultAlreadyInitialized)
}

func TestController_UnlockWithCorrectPassword(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, "hunter2", vaultcrypto.Fast))
	c.Lock()

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Unlocked)

	require.NoError(t, c.Unlock(ctx, "hunter2"))

	status, err = c.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Unlocked)
}

func TestController_UnlockWithWrongPassword(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, "hunter2", vaultcrypto.Fast))
	c.Lock()

	err := c.Unlock(ctx, "wrong password")
	require.ErrorIs(t, err, vaulterrors.ErrInvalidMasterKey)
}

func TestController_Unlock_RequiresInitialized(t *testing.T) {
	c := newTestController(t)

	err := c.Unlock(context.Background(), "hunter2")
	require.ErrorIs(t, err, vaulterrors.ErrVaultNotInitialized)
}

func TestController_Lock_IsIdempotent(t *testing.T) {
	c := newTestController(t)
	c.Lock()
	c.Lock()
}
