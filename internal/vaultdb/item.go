// Package vaultdb implements the Metadata Store: a relational catalogue of
// vault items backed by SQLite, where every sensitive column is stored as
// an independently nonced ciphertext blob. The package performs no
// decisions about WHEN to encrypt — every call that touches a ciphertext
// column takes a *vaultcrypto.Cipher capability as a parameter, per the
// vault's "one cipher behind a lock, passed by reference" design.
package vaultdb

import (
	"github.com/dromara/carbon/v2"
)

// FolderItemType is the sentinel item_type value that marks a VaultItem as
// a folder rather than a leaf item carrying a payload.
const FolderItemType = "folder"

// VaultItem is a single row of the catalogue, already decrypted.
type VaultItem struct {
	ID         string
	ParentID   string // empty means top-level
	Name       string
	ItemType   string
	FolderType string // only meaningful when ItemType == FolderItemType
	DataPath   string // empty for folders
	Tags       []string
	CreatedAt  *carbon.Carbon
	UpdatedAt  *carbon.Carbon
}

// IsFolder reports whether the item is a folder.
func (i VaultItem) IsFolder() bool {
	return i.ItemType == FolderItemType
}

func nowUTC() *carbon.Carbon {
	return carbon.Now(carbon.UTC)
}

func formatTimestamp(c *carbon.Carbon) string {
	return c.ToIso8601String(carbon.UTC)
}

func parseTimestamp(s string) (*carbon.Carbon, error) {
	c := carbon.Parse(s, carbon.UTC)
	if c.Error != nil {
		return nil, c.Error
	}

	return c, nil
}
