package vault_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func TestController_ExportDecryptedVault(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "top secret", "text", []string{"a"}, ""))

	doc, err := c.ExportDecryptedVault(ctx, "hunter2")
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(doc, &items))
	require.Len(t, items, 1)
	require.Equal(t, "note", items[0]["name"])
	require.NotEmpty(t, items[0]["content"])
}

func TestController_ExportDecryptedVault_WrongPassword(t *testing.T) {
	c := unlockedController(t)

	_, err := c.ExportDecryptedVault(context.Background(), "wrong")
	require.ErrorIs(t, err, vaulterrors.ErrInvalidMasterKey)
}

func TestController_ExportEncryptedVault_IsStoredZip(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "top secret", "text", nil, ""))

	archive, err := c.ExportEncryptedVault(ctx)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		require.Equal(t, zip.Store, f.Method)
	}

	require.Contains(t, names, "salt")
	require.Contains(t, names, "verify")
	require.Contains(t, names, "vault.db")
}
