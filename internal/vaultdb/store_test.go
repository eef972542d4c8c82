package vaultdb_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dromara/carbon/v2"
	_ "modernc.org/sqlite"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/internal/vaultdb"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

func newTestStore(t *testing.T) (*vaultdb.Store, *vaultcrypto.Cipher) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := vaultdb.Open(db)
	require.NoError(t, err)

	cipher := vaultcrypto.New()
	key := make([]byte, 32)
	require.NoError(t, cipher.Unlock(key))

	return store, cipher
}

func newItem(id, parentID, name string) vaultdb.VaultItem {
	now := carbon.Now(carbon.UTC)
	return vaultdb.VaultItem{
		ID:        id,
		ParentID:  parentID,
		Name:      name,
		ItemType:  "text",
		DataPath:  "inline:" + id,
		Tags:      []string{"work"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestStore_AddAndGetItem(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	item := newItem("item-1", "", "example.com")
	require.NoError(t, store.AddItem(ctx, cipher, item))

	got, err := store.GetItem(ctx, cipher, "item-1")
	require.NoError(t, err)
	require.Equal(t, item.Name, got.Name)
	require.Equal(t, item.Tags, got.Tags)
	require.Empty(t, got.ParentID)
}

func TestStore_RequireFolderParent_EmptyIsAllowed(t *testing.T) {
	store, cipher := newTestStore(t)

	require.NoError(t, store.RequireFolderParent(context.Background(), cipher, ""))
}

func TestStore_RequireFolderParent_MissingParent(t *testing.T) {
	store, cipher := newTestStore(t)

	err := store.RequireFolderParent(context.Background(), cipher, "ghost")
	require.Error(t, err)
}

func TestStore_RequireFolderParent_RejectsNonFolder(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	leaf := newItem("item-1", "", "example.com")
	require.NoError(t, store.AddItem(ctx, cipher, leaf))

	err := store.RequireFolderParent(ctx, cipher, "item-1")
	require.Error(t, err)
}

func TestStore_RequireFolderParent_AcceptsFolder(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	folder := newItem("folder-1", "", "Work")
	folder.ItemType = vaultdb.FolderItemType
	folder.FolderType = "generic"
	require.NoError(t, store.AddItem(ctx, cipher, folder))

	require.NoError(t, store.RequireFolderParent(ctx, cipher, "folder-1"))
}

func TestStore_RequireFolderParent_UnknownParentIsInvalidInput(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	item := newItem("item-1", "ghost", "example.com")
	require.ErrorIs(t, store.RequireFolderParent(ctx, cipher, item.ParentID), vaulterrors.ErrInvalidInput)
}

func TestStore_GetItem_NotFound(t *testing.T) {
	store, cipher := newTestStore(t)

	_, err := store.GetItem(context.Background(), cipher, "missing")
	require.Error(t, err)
}

func TestStore_UpdateItem(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	item := newItem("item-1", "", "example.com")
	require.NoError(t, store.AddItem(ctx, cipher, item))

	item.Name = "renamed.example.com"
	require.NoError(t, store.UpdateItem(ctx, cipher, item))

	got, err := store.GetItem(ctx, cipher, "item-1")
	require.NoError(t, err)
	require.Equal(t, "renamed.example.com", got.Name)
}

func TestStore_UpdateItem_NotFound(t *testing.T) {
	store, cipher := newTestStore(t)

	err := store.UpdateItem(context.Background(), cipher, newItem("ghost", "", "x"))
	require.Error(t, err)
}

func TestStore_GetItems_ScopedToParent(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	folder := newItem("folder-1", "", "Work")
	folder.ItemType = vaultdb.FolderItemType
	folder.FolderType = "generic"
	folder.DataPath = ""
	require.NoError(t, store.AddItem(ctx, cipher, folder))

	child := newItem("item-1", "folder-1", "example.com")
	require.NoError(t, store.AddItem(ctx, cipher, child))

	top := newItem("item-2", "", "other.com")
	require.NoError(t, store.AddItem(ctx, cipher, top))

	topLevel, err := store.GetItems(ctx, cipher, "", "", vaultdb.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, topLevel, 2)

	children, err := store.GetItems(ctx, cipher, "folder-1", "", vaultdb.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "item-1", children[0].ID)
}

func TestStore_GetItems_FoldersSortFirst(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	leaf := newItem("leaf", "", "aaa.com")
	require.NoError(t, store.AddItem(ctx, cipher, leaf))

	folder := newItem("folder", "", "zzz")
	folder.ItemType = vaultdb.FolderItemType
	folder.FolderType = "generic"
	folder.DataPath = ""
	require.NoError(t, store.AddItem(ctx, cipher, folder))

	items, err := store.GetItems(ctx, cipher, "", "", vaultdb.SortByNameAsc)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "folder", items[0].ID)
	require.Equal(t, "leaf", items[1].ID)
}

func TestStore_DeleteItemAndDescendants(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	folder := newItem("folder-1", "", "Work")
	folder.ItemType = vaultdb.FolderItemType
	folder.FolderType = "generic"
	folder.DataPath = ""
	require.NoError(t, store.AddItem(ctx, cipher, folder))

	child := newItem("item-1", "folder-1", "example.com")
	require.NoError(t, store.AddItem(ctx, cipher, child))

	grandchildFolder := newItem("folder-2", "folder-1", "Nested")
	grandchildFolder.ItemType = vaultdb.FolderItemType
	grandchildFolder.FolderType = "generic"
	grandchildFolder.DataPath = ""
	require.NoError(t, store.AddItem(ctx, cipher, grandchildFolder))

	leaf := newItem("item-2", "folder-2", "nested.com")
	require.NoError(t, store.AddItem(ctx, cipher, leaf))

	paths, err := store.DeleteItemAndDescendants(ctx, cipher, "folder-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"inline:item-1", "inline:item-2"}, paths)

	_, err = store.GetItem(ctx, cipher, "folder-1")
	require.Error(t, err)
	_, err = store.GetItem(ctx, cipher, "item-1")
	require.Error(t, err)
	_, err = store.GetItem(ctx, cipher, "folder-2")
	require.Error(t, err)
	_, err = store.GetItem(ctx, cipher, "item-2")
	require.Error(t, err)
}

func TestStore_DeleteItemAndDescendants_NotFound(t *testing.T) {
	store, cipher := newTestStore(t)

	_, err := store.DeleteItemAndDescendants(context.Background(), cipher, "missing")
	require.Error(t, err)
}

func TestStore_RenameTagInAllItems(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	a := newItem("a", "", "a.com")
	a.Tags = []string{"work", "urgent"}
	require.NoError(t, store.AddItem(ctx, cipher, a))

	b := newItem("b", "", "b.com")
	b.Tags = []string{"personal"}
	require.NoError(t, store.AddItem(ctx, cipher, b))

	require.NoError(t, store.RenameTagInAllItems(ctx, cipher, "work", "office"))

	got, err := store.GetItem(ctx, cipher, "a")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"office", "urgent"}, got.Tags)

	gotB, err := store.GetItem(ctx, cipher, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"personal"}, gotB.Tags)
}

func TestStore_RemoveTagFromAllItems(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	a := newItem("a", "", "a.com")
	a.Tags = []string{"work", "urgent"}
	require.NoError(t, store.AddItem(ctx, cipher, a))

	require.NoError(t, store.RemoveTagFromAllItems(ctx, cipher, "urgent"))

	got, err := store.GetItem(ctx, cipher, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"work"}, got.Tags)
}

func TestStore_AllTags(t *testing.T) {
	store, cipher := newTestStore(t)
	ctx := context.Background()

	a := newItem("a", "", "a.com")
	a.Tags = []string{"work", "urgent"}
	require.NoError(t, store.AddItem(ctx, cipher, a))

	b := newItem("b", "", "b.com")
	b.Tags = []string{"personal", "work"}
	require.NoError(t, store.AddItem(ctx, cipher, b))

	tags, err := store.AllTags(ctx, cipher)
	require.NoError(t, err)
	require.Equal(t, []string{"personal", "urgent", "work"}, tags)
}
