package vaultdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/internal/vaultdb"
)

func TestStore_InitializeMeta(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeMeta(ctx, vaultcrypto.Paranoid))

	strength, err := store.KDFStrength(ctx)
	require.NoError(t, err)
	require.Equal(t, vaultcrypto.Paranoid, strength)

	attempts, err := store.FailedAttempts(ctx)
	require.NoError(t, err)
	require.Zero(t, attempts)

	threshold, cooldown, err := store.LockoutPolicy(ctx)
	require.NoError(t, err)
	require.Equal(t, vaultdb.DefaultLockoutThreshold, threshold)
	require.Equal(t, vaultdb.DefaultLockoutCooldownSeconds, cooldown)
}

func TestStore_BruteForceConfig_DefaultsOnFreshVault(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeMeta(ctx, vaultcrypto.Recommended))

	cfg, err := store.BruteForceConfig(ctx)
	require.NoError(t, err)
	require.True(t, cfg.Enabled)
	require.Equal(t, vaultdb.DefaultLockoutThreshold, cfg.MaxAttempts)
	require.Equal(t, vaultdb.DefaultLockoutCooldownSeconds/60, cfg.LockoutDurationMinutes)
}

func TestStore_SetBruteForceConfig_RoundTrips(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeMeta(ctx, vaultcrypto.Recommended))

	want := vaultdb.BruteForceConfig{Enabled: false, MaxAttempts: 10, LockoutDurationMinutes: 5}
	require.NoError(t, store.SetBruteForceConfig(ctx, want))

	got, err := store.BruteForceConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStore_KDFStrength_DefaultsWhenUnset(t *testing.T) {
	store, _ := newTestStore(t)

	strength, err := store.KDFStrength(context.Background())
	require.NoError(t, err)
	require.Equal(t, vaultcrypto.DefaultStrength, strength)
}

func TestStore_RecordAndResetFailedAttempts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeMeta(ctx, vaultcrypto.Recommended))

	n, err := store.RecordFailedAttempt(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = store.RecordFailedAttempt(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, ok, err := store.LastFailedAttempt(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.ResetFailedAttempts(ctx))

	n, err = store.FailedAttempts(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStore_UITheme(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	theme, err := store.UITheme(ctx)
	require.NoError(t, err)
	require.Empty(t, theme)

	require.NoError(t, store.SetUITheme(ctx, "dark"))

	theme, err = store.UITheme(ctx)
	require.NoError(t, err)
	require.Equal(t, "dark", theme)
}
