package vault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/vault"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func unlockedController(t *testing.T) *vault.Controller {
	t.Helper()

	c := newTestController(t)
	require.NoError(t, c.Initialize(context.Background(), "hunter2", vaultcrypto.Fast))

	return c
}

func TestController_AddTextItemAndGetContent(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "hello world", "text/plain", []string{"personal"}, ""))

	items, err := c.GetItems(ctx, "", "", vault.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, items, 1)

	content, err := c.GetItemContent(ctx, items[0].ID)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(content))
}

func TestController_RequiresUnlockedForItemOps(t *testing.T) {
	c := newTestController(t)

	err := c.AddTextItem(context.Background(), "note", "x", "text", nil, "")
	require.ErrorIs(t, err, vaulterrors.ErrVaultLocked)
}

func TestController_AddFolderAndScopedChildren(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddFolder(ctx, "Work", "", "generic"))

	folders, err := c.GetItems(ctx, "", "", vault.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, folders, 1)

	require.NoError(t, c.AddTextItem(ctx, "secret", "value", "text", nil, folders[0].ID))

	children, err := c.GetItems(ctx, folders[0].ID, "", vault.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "secret", children[0].Name)
}

func TestController_AddTextItem_RejectsUnknownParent(t *testing.T) {
	c := unlockedController(t)

	err := c.AddTextItem(context.Background(), "note", "x", "text", nil, "ghost")
	require.ErrorIs(t, err, vaulterrors.ErrInvalidInput)
}

func TestController_AddTextItem_RejectsNonFolderParent(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "x", "text", nil, ""))

	items, err := c.GetItems(ctx, "", "", vault.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, items, 1)

	err = c.AddTextItem(ctx, "child", "y", "text", nil, items[0].ID)
	require.ErrorIs(t, err, vaulterrors.ErrInvalidInput)
}

func TestController_AddFolder_RejectsUnknownParent(t *testing.T) {
	c := unlockedController(t)

	err := c.AddFolder(context.Background(), "Work", "ghost", "generic")
	require.ErrorIs(t, err, vaulterrors.ErrInvalidInput)
}

func TestController_DeleteItem(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "hello", "text", nil, ""))

	items, err := c.GetItems(ctx, "", "", vault.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, items, 1)

	deletedID := items[0].ID

	ok, err := c.DeleteItem(ctx, deletedID)
	require.NoError(t, err)
	require.True(t, ok)

	items, err = c.GetItems(ctx, "", "", vault.SortByNameAsc)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = c.GetItemContent(ctx, deletedID)
	require.Error(t, err)
}

func TestController_RenameAndDeleteTag(t *testing.T) {
	c := unlockedController(t)
	ctx := context.Background()

	require.NoError(t, c.AddTextItem(ctx, "note", "hello", "text", []string{"work", "urgent"}, ""))

	require.NoError(t, c.RenameTag(ctx, "work", "office"))

	tags, err := c.GetAllTags(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"office", "urgent"}, tags)

	require.NoError(t, c.DeleteTag(ctx, "urgent"))

	tags, err = c.GetAllTags(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"office"}, tags)
}
