package vault

import (
	"context"
	"os"

	"github.com/dromara/carbon/v2"
	"github.com/google/uuid"

	"github.com/ladzaretti/vaultcore/internal/vaultdb"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// AddTextItem encrypts content as a new blob, then inserts a catalogue row
// referencing it.
func (c *Controller) AddTextItem(ctx context.Context, name, content, itemType string, tags []string, parentID string) error {
	if len(name) == 0 {
		return vaulterrors.NewInvalidInputError("item name must not be empty")
	}

	if len(content) == 0 {
		return vaulterrors.NewInvalidInputError("item content must not be empty")
	}

	return c.addLeafItem(ctx, name, itemType, tags, parentID, []byte(content))
}

// AddFileItem reads filePath from disk, encrypts its contents as a new
// blob, and inserts a catalogue row referencing it.
func (c *Controller) AddFileItem(ctx context.Context, name, filePath string, tags []string, parentID string) error {
	if len(name) == 0 {
		return vaulterrors.NewInvalidInputError("item name must not be empty")
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return vaulterrors.NewInvalidInputError("read file item: " + err.Error())
	}

	return c.addLeafItem(ctx, name, "file", tags, parentID, content)
}

func (c *Controller) addLeafItem(ctx context.Context, name, itemType string, tags []string, parentID string, content []byte) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return err
	}

	if err := c.store.RequireFolderParent(ctx, c.cipher, parentID); err != nil {
		return err
	}

	dataPath := c.blobs.NewPath()

	ciphertext, err := c.cipher.Encrypt(content)
	if err != nil {
		return wrapf("add item: encrypt payload", err)
	}

	if err := c.blobs.Write(dataPath, ciphertext); err != nil {
		return wrapf("add item: write blob", err)
	}

	now := carbon.Now(carbon.UTC)

	item := vaultdb.VaultItem{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Name:      name,
		ItemType:  itemType,
		DataPath:  dataPath,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.store.AddItem(ctx, c.cipher, item); err != nil {
		if shredErr := c.blobs.Shred(ctx, dataPath); shredErr != nil {
			c.logger.Warn().Err(shredErr).Str("path", dataPath).Msg("add item: failed to clean up orphan blob after catalogue insert failure")
		}

		return wrapf("add item: catalogue insert", err)
	}

	return nil
}

// AddFolder inserts a folder catalogue row with no backing blob.
func (c *Controller) AddFolder(ctx context.Context, name, parentID, folderType string) error {
	if len(name) == 0 {
		return vaulterrors.NewInvalidInputError("folder name must not be empty")
	}

	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return err
	}

	if err := c.store.RequireFolderParent(ctx, c.cipher, parentID); err != nil {
		return err
	}

	now := carbon.Now(carbon.UTC)

	item := vaultdb.VaultItem{
		ID:         uuid.NewString(),
		ParentID:   parentID,
		Name:       name,
		ItemType:   vaultdb.FolderItemType,
		FolderType: folderType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.store.AddItem(ctx, c.cipher, item); err != nil {
		return wrapf("add folder", err)
	}

	return nil
}

// GetItems returns the decrypted, sorted items scoped to parentID.
func (c *Controller) GetItems(ctx context.Context, parentID, itemTypeFilter string, order SortOrder) ([]VaultItem, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return nil, err
	}

	items, err := c.store.GetItems(ctx, c.cipher, parentID, itemTypeFilter, order)
	if err != nil {
		return nil, wrapf("get items", err)
	}

	return items, nil
}

// GetItemContent returns the decrypted payload of a non-folder item.
func (c *Controller) GetItemContent(ctx context.Context, id string) ([]byte, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return nil, err
	}

	item, err := c.store.GetItem(ctx, c.cipher, id)
	if err != nil {
		return nil, wrapf("get item content", err)
	}

	if item.IsFolder() {
		return nil, vaulterrors.NewInvalidInputError("item is a folder and has no content")
	}

	ciphertext, err := c.blobs.Read(item.DataPath)
	if err != nil {
		return nil, wrapf("get item content: read blob", err)
	}

	plaintext, err := c.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, wrapf("get item content: decrypt blob", err)
	}

	return plaintext, nil
}

// DeleteItem deletes id and every descendant reachable through parent_id
// links, then best-effort shreds the blobs they referenced.
func (c *Controller) DeleteItem(ctx context.Context, id string) (bool, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return false, err
	}

	dataPaths, err := c.store.DeleteItemAndDescendants(ctx, c.cipher, id)
	if err != nil {
		return false, wrapf("delete item", err)
	}

	if err := c.blobs.ShredAll(ctx, dataPaths); err != nil {
		c.logger.Warn().Err(err).Strs("paths", dataPaths).Msg("delete item: one or more blobs failed to shred")
	}

	return true, nil
}

// RenameTag replaces oldTag with newTag across every item.
func (c *Controller) RenameTag(ctx context.Context, oldTag, newTag string) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return err
	}

	return wrapf("rename tag", c.store.RenameTagInAllItems(ctx, c.cipher, oldTag, newTag))
}

// DeleteTag removes tag from every item.
func (c *Controller) DeleteTag(ctx context.Context, tag string) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return err
	}

	return wrapf("delete tag", c.store.RemoveTagFromAllItems(ctx, c.cipher, tag))
}

// GetAllTags returns the sorted, deduplicated set of tags in use.
func (c *Controller) GetAllTags(ctx context.Context) ([]string, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	if err := c.requireUnlocked(); err != nil {
		return nil, err
	}

	tags, err := c.store.AllTags(ctx, c.cipher)
	if err != nil {
		return nil, wrapf("get all tags", err)
	}

	return tags, nil
}
