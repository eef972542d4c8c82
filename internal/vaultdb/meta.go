package vaultdb

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// meta table keys. Values are stored as plain text, never ciphertext: none
// of them are secret, and the brute-force counters must stay readable
// before the vault is unlocked.
const (
	metaKeyKDFStrength       = "kdf_strength"
	metaKeyFailedAttempts    = "failed_attempts"
	metaKeyLastFailedAttempt = "last_failed_attempt"
	metaKeyBruteForceEnabled = "brute_force_enabled"
	metaKeyLockoutThreshold  = "lockout_threshold"
	metaKeyLockoutCooldownS  = "lockout_cooldown_seconds"
	metaKeyUITheme           = "ui_theme"
)

const (
	// DefaultBruteForceEnabled is whether lockout tracking is armed on a
	// freshly initialized vault.
	DefaultBruteForceEnabled = true

	// DefaultLockoutThreshold is the default number of consecutive failed
	// unlock attempts recorded in the lockout policy. Controller.Unlock
	// records and resets the failed-attempt counter in the meta table; no
	// code path compares it against the threshold or imposes a cooldown.
	DefaultLockoutThreshold = 5

	// DefaultLockoutCooldownSeconds is the default cooldown window once the
	// threshold is reached.
	DefaultLockoutCooldownSeconds = 30
)

// BruteForceConfig is the meta table's brute-force policy, exposed as a
// single unit: whether lockout tracking is armed, how many consecutive
// failed attempts trigger it, and how long the resulting cooldown lasts.
type BruteForceConfig struct {
	Enabled                bool
	MaxAttempts            int
	LockoutDurationMinutes int
}

const upsertMeta = `
	INSERT INTO meta (key, value) VALUES (?, ?)
	ON CONFLICT (key) DO UPDATE SET value = excluded.value
`

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertMeta, key, value); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	return nil
}

func (s *Store) getMeta(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, vaulterrors.NewStorageError(err)
	}

	return value, true, nil
}

// InitializeMeta populates the meta table for a freshly created vault: the
// chosen KDF strength, zeroed attempt counters, and default lockout policy.
func (s *Store) InitializeMeta(ctx context.Context, strength vaultcrypto.Strength) error {
	entries := map[string]string{
		metaKeyKDFStrength:       string(strength),
		metaKeyFailedAttempts:    "0",
		metaKeyBruteForceEnabled: formatBool(DefaultBruteForceEnabled),
		metaKeyLockoutThreshold:  strconv.Itoa(DefaultLockoutThreshold),
		metaKeyLockoutCooldownS:  strconv.Itoa(DefaultLockoutCooldownSeconds),
	}

	for key, value := range entries {
		if err := s.setMeta(ctx, key, value); err != nil {
			return err
		}
	}

	return nil
}

// SetKDFStrength updates the recorded strength profile without touching
// any other meta entry, used by master-key rotation when only the profile
// (and the salt, stored separately) changes.
func (s *Store) SetKDFStrength(ctx context.Context, strength vaultcrypto.Strength) error {
	return s.setMeta(ctx, metaKeyKDFStrength, string(strength))
}

// KDFStrength returns the strength profile recorded at initialization time.
func (s *Store) KDFStrength(ctx context.Context) (vaultcrypto.Strength, error) {
	value, ok, err := s.getMeta(ctx, metaKeyKDFStrength)
	if err != nil {
		return "", err
	}

	if !ok {
		return vaultcrypto.DefaultStrength, nil
	}

	strength := vaultcrypto.Strength(value)
	if !strength.Valid() {
		return "", vaulterrors.NewInternalError("meta: unrecognized kdf_strength value " + value)
	}

	return strength, nil
}

// FailedAttempts returns the number of consecutive failed unlock attempts
// recorded since the last success.
func (s *Store) FailedAttempts(ctx context.Context) (int, error) {
	value, ok, err := s.getMeta(ctx, metaKeyFailedAttempts)
	if err != nil {
		return 0, err
	}

	if !ok {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, vaulterrors.NewInternalError("meta: non-numeric failed_attempts value")
	}

	return n, nil
}

// RecordFailedAttempt increments the failed-attempt counter and stamps the
// current time, returning the new count.
func (s *Store) RecordFailedAttempt(ctx context.Context) (int, error) {
	n, err := s.FailedAttempts(ctx)
	if err != nil {
		return 0, err
	}

	n++

	if err := s.setMeta(ctx, metaKeyFailedAttempts, strconv.Itoa(n)); err != nil {
		return 0, err
	}

	if err := s.setMeta(ctx, metaKeyLastFailedAttempt, formatTimestamp(nowUTC())); err != nil {
		return 0, err
	}

	return n, nil
}

// ResetFailedAttempts zeroes the failed-attempt counter, called after a
// successful unlock.
func (s *Store) ResetFailedAttempts(ctx context.Context) error {
	return s.setMeta(ctx, metaKeyFailedAttempts, "0")
}

// LastFailedAttempt returns the timestamp of the most recent failed unlock,
// or ok=false if none has ever been recorded.
func (s *Store) LastFailedAttempt(ctx context.Context) (ts string, ok bool, err error) {
	return s.getMeta(ctx, metaKeyLastFailedAttempt)
}

// LockoutPolicy returns the configured threshold and cooldown window.
func (s *Store) LockoutPolicy(ctx context.Context) (threshold int, cooldownSeconds int, err error) {
	thresholdStr, ok, err := s.getMeta(ctx, metaKeyLockoutThreshold)
	if err != nil {
		return 0, 0, err
	}

	if !ok {
		return DefaultLockoutThreshold, DefaultLockoutCooldownSeconds, nil
	}

	cooldownStr, _, err := s.getMeta(ctx, metaKeyLockoutCooldownS)
	if err != nil {
		return 0, 0, err
	}

	threshold, err1 := strconv.Atoi(thresholdStr)
	cooldownSeconds, err2 := strconv.Atoi(cooldownStr)

	if err1 != nil || err2 != nil {
		return 0, 0, vaulterrors.NewInternalError("meta: non-numeric lockout policy value")
	}

	return threshold, cooldownSeconds, nil
}

// BruteForceConfig returns the vault's current brute-force lockout policy as
// a single unit.
func (s *Store) BruteForceConfig(ctx context.Context) (BruteForceConfig, error) {
	enabledStr, ok, err := s.getMeta(ctx, metaKeyBruteForceEnabled)
	if err != nil {
		return BruteForceConfig{}, err
	}

	enabled := DefaultBruteForceEnabled
	if ok {
		enabled, err = parseBool(enabledStr)
		if err != nil {
			return BruteForceConfig{}, vaulterrors.NewInternalError("meta: non-boolean brute_force_enabled value")
		}
	}

	threshold, cooldownSeconds, err := s.LockoutPolicy(ctx)
	if err != nil {
		return BruteForceConfig{}, err
	}

	return BruteForceConfig{
		Enabled:                enabled,
		MaxAttempts:            threshold,
		LockoutDurationMinutes: cooldownSeconds / 60,
	}, nil
}

// SetBruteForceConfig overwrites the vault's brute-force lockout policy.
func (s *Store) SetBruteForceConfig(ctx context.Context, cfg BruteForceConfig) error {
	if err := s.setMeta(ctx, metaKeyBruteForceEnabled, formatBool(cfg.Enabled)); err != nil {
		return err
	}

	if err := s.setMeta(ctx, metaKeyLockoutThreshold, strconv.Itoa(cfg.MaxAttempts)); err != nil {
		return err
	}

	return s.setMeta(ctx, metaKeyLockoutCooldownS, strconv.Itoa(cfg.LockoutDurationMinutes*60))
}

func formatBool(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, errors.New("not a stored bool")
	}
}

// UITheme returns the stored UI theme preference, or "" if unset.
func (s *Store) UITheme(ctx context.Context) (string, error) {
	value, _, err := s.getMeta(ctx, metaKeyUITheme)
	return value, err
}

// SetUITheme stores the UI theme preference.
func (s *Store) SetUITheme(ctx context.Context, theme string) error {
	return s.setMeta(ctx, metaKeyUITheme, theme)
}
