package vault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func TestController_DeleteVault(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "hello", "text", nil, ""))

	require.NoError(t, c.DeleteVault(ctx, "hunter2"))

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Initialized)
}

func TestController_DeleteVault_WrongPassword(t *testing.T) {
	c := unlockedController(t)

	err := c.DeleteVault(context.Background(), "wrong")
	require.ErrorIs(t, err, vaulterrors.ErrInvalidMasterKey)

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	require.True(t, status.Initialized)
}

func TestController_Reset(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "hello", "text", nil, ""))

	require.NoError(t, c.Reset(ctx))

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Initialized)
	require.False(t, status.Unlocked)
}
