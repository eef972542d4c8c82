package vault

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

// exportedItem is the textual-document shape produced by
// ExportDecryptedVault: every catalogue field plus the decrypted payload,
// base64-encoded since it may be binary.
type exportedItem struct {
	ID         string   `json:"id"`
	ParentID   string   `json:"parent_id,omitempty"`
	Name       string   `json:"name"`
	ItemType   string   `json:"item_type"`
	FolderType string   `json:"folder_type,omitempty"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	Content    string   `json:"content,omitempty"` // base64, absent for folders
}

// ExportDecryptedVault requires the current password (re-verified against
// the verification token, never trusting the live cipher) and produces a
// JSON document listing every item's metadata and decrypted payload.
func (c *Controller) ExportDecryptedVault(ctx context.Context, masterKey string) ([]byte, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	key, err := c.verifyPassword(ctx, masterKey)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	exportCipher, err := newArmedCipher(key)
	if err != nil {
		return nil, err
	}
	defer exportCipher.Lock()

	items, err := c.store.GetAllItemsRecursive(ctx, exportCipher)
	if err != nil {
		return nil, wrapf("export decrypted vault", err)
	}

	exported := make([]exportedItem, 0, len(items))

	for _, item := range items {
		e := exportedItem{
			ID:         item.ID,
			ParentID:   item.ParentID,
			Name:       item.Name,
			ItemType:   item.ItemType,
			FolderType: item.FolderType,
			Tags:       item.Tags,
			CreatedAt:  item.CreatedAt.ToIso8601String(),
			UpdatedAt:  item.UpdatedAt.ToIso8601String(),
		}

		if !item.IsFolder() && len(item.DataPath) > 0 {
			ciphertext, err := c.blobs.Read(item.DataPath)
			if err != nil {
				return nil, wrapf("export decrypted vault: read blob", err)
			}

			plaintext, err := exportCipher.Decrypt(ciphertext)
			if err != nil {
				return nil, wrapf("export decrypted vault: decrypt blob", err)
			}

			e.Content = base64.StdEncoding.EncodeToString(plaintext)
		}

		exported = append(exported, e)
	}

	doc, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return nil, vaulterrors.NewSerializationError("marshal export document", err)
	}

	return doc, nil
}

// ExportEncryptedVault produces a stored-mode (uncompressed) zip archive of
// the vault directory exactly as it sits on disk: salt, verify, vault.db,
// and every blob, all still ciphertext.
func (c *Controller) ExportEncryptedVault(ctx context.Context) ([]byte, error) {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	err := filepath.Walk(c.layout.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(c.layout.Root, path)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:   filepath.ToSlash(rel),
			Method: zip.Store,
		}
		header.SetMode(info.Mode())

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		_, err = io.Copy(w, f)

		return err
	})
	if err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	if err := zw.Close(); err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	return buf.Bytes(), nil
}
