package vaultdb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ladzaretti/migrate"
	migratetypes "github.com/ladzaretti/migrate/types"

	"github.com/ladzaretti/vaultcore/internal/vaultcrypto"
	"github.com/ladzaretti/vaultcore/vaulterrors"
)

//go:embed migrations/sqlite
var migrationsFS embed.FS

var catalogueMigrations = migrate.EmbeddedMigrations{
	FS:   migrationsFS,
	Path: "migrations/sqlite",
}

// DBTX is the minimal database handle the store needs; *sql.DB and *sql.Tx
// both satisfy it, matching the "WithTx returns a store bound to the given
// transaction" pattern used throughout the catalogue layer.
type DBTX = migratetypes.DBTX

// Store provides access to the vault's catalogue. It performs no
// cryptographic policy decisions of its own: every operation that reads or
// writes a ciphertext column is handed a *vaultcrypto.Cipher capability.
type Store struct {
	db DBTX
}

// Open applies the catalogue schema migrations to db and returns a Store
// bound to it.
func Open(db *sql.DB) (*Store, error) {
	m := migrate.New(db, migrate.SQLiteDialect{})

	if _, err := m.Apply(catalogueMigrations); err != nil {
		return nil, fmt.Errorf("vaultdb: apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// WithTx returns a new Store bound to the given transaction.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{db: tx}
}

// BeginTx starts a transaction on the store's underlying database handle.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{})
}

// RequireFolderParent validates parentID per the catalogue's data model
// invariant: empty means top-level and is always allowed; otherwise
// parentID must resolve to an existing item whose item_type is folder.
// The foreign key on items.parent_id only catches a dangling reference;
// it cannot express "and that row must be a folder", so this check runs
// in addition to it.
func (s *Store) RequireFolderParent(ctx context.Context, cipher *vaultcrypto.Cipher, parentID string) error {
	if len(parentID) == 0 {
		return nil
	}

	parent, err := s.GetItem(ctx, cipher, parentID)
	if err != nil {
		if errors.Is(err, vaulterrors.ErrItemNotFound) {
			return vaulterrors.NewInvalidInputError("parent_id does not reference an existing item")
		}

		return err
	}

	if !parent.IsFolder() {
		return vaulterrors.NewInvalidInputError("parent_id does not reference a folder")
	}

	return nil
}

const insertItem = `
	INSERT INTO items (id, parent_id, name, item_type, folder_type, data_path, tags, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// AddItem encrypts item's sensitive columns with cipher and inserts a new
// catalogue row.
func (s *Store) AddItem(ctx context.Context, cipher *vaultcrypto.Cipher, item VaultItem) error {
	row, err := encryptItem(cipher, item)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, insertItem,
		row.id, row.parentID, row.name, row.itemType, row.folderType, row.dataPath, row.tags, row.createdAt, row.updatedAt,
	); err != nil {
		return wrapConstraintOrStorage(err)
	}

	return nil
}

const updateItem = `
	UPDATE items
	SET parent_id = ?, name = ?, item_type = ?, folder_type = ?, data_path = ?, tags = ?, created_at = ?, updated_at = ?
	WHERE id = ?
`

// UpdateItem encrypts item's sensitive columns with cipher and overwrites
// the existing row with the same id.
func (s *Store) UpdateItem(ctx context.Context, cipher *vaultcrypto.Cipher, item VaultItem) error {
	row, err := encryptItem(cipher, item)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, updateItem,
		row.parentID, row.name, row.itemType, row.folderType, row.dataPath, row.tags, row.createdAt, row.updatedAt, row.id,
	)
	if err != nil {
		return wrapConstraintOrStorage(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return vaulterrors.NewStorageError(err)
	}

	if n == 0 {
		return vaulterrors.NewItemNotFoundError(item.ID)
	}

	return nil
}

const selectItemByID = `
	SELECT id, parent_id, name, item_type, folder_type, data_path, tags, created_at, updated_at
	FROM items
	WHERE id = ?
`

// GetItem returns the decrypted item with the given id, or
// *vaulterrors.ItemNotFoundError if it does not exist.
func (s *Store) GetItem(ctx context.Context, cipher *vaultcrypto.Cipher, id string) (*VaultItem, error) {
	var row encryptedRow

	err := s.db.QueryRowContext(ctx, selectItemByID, id).Scan(
		&row.id, &row.parentID, &row.name, &row.itemType, &row.folderType, &row.dataPath, &row.tags, &row.createdAt, &row.updatedAt,
	)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, vaulterrors.NewItemNotFoundError(id)
	case err != nil:
		return nil, vaulterrors.NewStorageError(err)
	}

	item, err := decryptRow(cipher, row)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

const selectAllItems = `
	SELECT id, parent_id, name, item_type, folder_type, data_path, tags, created_at, updated_at
	FROM items
`

// GetAllItemsRecursive returns every item in the catalogue, decrypted. The
// flat parent_id representation means "recursive" is simply "unscoped":
// every descendant at every depth is already a row in the same table.
func (s *Store) GetAllItemsRecursive(ctx context.Context, cipher *vaultcrypto.Cipher) ([]VaultItem, error) {
	return s.queryItems(ctx, cipher, selectAllItems)
}

// GetItems returns items scoped to parentID (empty string means top-level),
// optionally filtered by itemTypeFilter, sorted per order. Sorting and type
// filtering both run in memory, after decryption, because the sort keys and
// the type columns live inside ciphertext.
func (s *Store) GetItems(ctx context.Context, cipher *vaultcrypto.Cipher, parentID string, itemTypeFilter string, order SortOrder) ([]VaultItem, error) {
	var (
		query string
		args  []any
	)

	if len(parentID) == 0 {
		query = selectAllItems + " WHERE parent_id IS NULL"
	} else {
		query = selectAllItems + " WHERE parent_id = ?"
		args = append(args, parentID)
	}

	items, err := s.queryItems(ctx, cipher, query, args...)
	if err != nil {
		return nil, err
	}

	if len(itemTypeFilter) > 0 {
		items = lo.Filter(items, func(it VaultItem, _ int) bool {
			return matchesTypeFilter(it, itemTypeFilter)
		})
	}

	Sort(items, order)

	return items, nil
}

func matchesTypeFilter(it VaultItem, filter string) bool {
	if strings.HasPrefix(it.ItemType, filter) {
		return true
	}

	return it.IsFolder() && it.FolderType == filter
}

func (s *Store) queryItems(ctx context.Context, cipher *vaultcrypto.Cipher, query string, args ...any) ([]VaultItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]VaultItem, 0, 8)

	for rows.Next() {
		var row encryptedRow

		if err := rows.Scan(&row.id, &row.parentID, &row.name, &row.itemType, &row.folderType, &row.dataPath, &row.tags, &row.createdAt, &row.updatedAt); err != nil {
			return nil, vaulterrors.NewStorageError(err)
		}

		item, err := decryptRow(cipher, row)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	return items, nil
}

// childIDsAndDataPaths returns the ids of the immediate children of
// parentID and the data_path of each non-folder child, decrypting only the
// item_type and data_path columns (used internally by recursive delete).
func (s *Store) childIDsAndDataPaths(ctx context.Context, cipher *vaultcrypto.Cipher, parentID string) (ids []string, dataPaths []string, retErr error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, item_type, data_path FROM items WHERE parent_id = ?`, parentID)
	if err != nil {
		return nil, nil, vaulterrors.NewStorageError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string

		var encType, encDataPath []byte

		if err := rows.Scan(&id, &encType, &encDataPath); err != nil {
			return nil, nil, vaulterrors.NewStorageError(err)
		}

		itemType, err := decryptColumn(cipher, "item_type", encType)
		if err != nil {
			return nil, nil, err
		}

		dataPath, err := decryptColumn(cipher, "data_path", encDataPath)
		if err != nil {
			return nil, nil, err
		}

		ids = append(ids, id)

		if itemType != FolderItemType && len(dataPath) > 0 {
			dataPaths = append(dataPaths, dataPath)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, vaulterrors.NewStorageError(err)
	}

	return ids, dataPaths, nil
}

// DeleteItemAndDescendants deletes root and every descendant reachable
// through parent_id links in a single transaction, and returns the
// data_path of every deleted non-folder item so the caller can shred the
// corresponding blobs. The transaction commits before any blob is touched:
// catalogue authority is primary, so a crash after commit leaves at worst
// orphan blob files, never a dangling catalogue reference.
func (s *Store) DeleteItemAndDescendants(ctx context.Context, cipher *vaultcrypto.Cipher, rootID string) (dataPaths []string, retErr error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	txStore := s.WithTx(tx)

	ids, paths, err := txStore.collectDescendants(ctx, cipher, rootID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if len(ids) == 0 {
		_ = tx.Rollback()
		return nil, vaulterrors.NewItemNotFoundError(rootID)
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))

	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `DELETE FROM items WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return nil, wrapConstraintOrStorage(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	return paths, nil
}

// collectDescendants walks parent_id edges breadth-first starting at
// rootID, returning every reachable id (including rootID itself) and the
// data_path of every non-folder among them. rootID itself must exist.
func (s *Store) collectDescendants(ctx context.Context, cipher *vaultcrypto.Cipher, rootID string) ([]string, []string, error) {
	root, err := s.GetItem(ctx, cipher, rootID)
	if err != nil {
		return nil, nil, err
	}

	ids := []string{root.ID}

	var dataPaths []string

	if !root.IsFolder() && len(root.DataPath) > 0 {
		dataPaths = append(dataPaths, root.DataPath)
	}

	queue := []string{root.ID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		childIDs, childDataPaths, err := s.childIDsAndDataPaths(ctx, cipher, current)
		if err != nil {
			return nil, nil, err
		}

		ids = append(ids, childIDs...)
		dataPaths = append(dataPaths, childDataPaths...)
		queue = append(queue, childIDs...)
	}

	return ids, dataPaths, nil
}

// RenameTagInAllItems replaces every occurrence of oldTag with newTag
// across every item's tag list, deduplicating afterward, and bumps
// updated_at only on items that actually changed. The whole rewrite is one
// transaction.
func (s *Store) RenameTagInAllItems(ctx context.Context, cipher *vaultcrypto.Cipher, oldTag, newTag string) error {
	return s.rewriteTags(ctx, cipher, func(tags []string) []string {
		rewritten := make([]string, len(tags))

		for i, t := range tags {
			if t == oldTag {
				rewritten[i] = newTag
			} else {
				rewritten[i] = t
			}
		}

		return lo.Uniq(rewritten)
	})
}

// RemoveTagFromAllItems removes tag from every item's tag list, one
// transaction for the whole rewrite.
func (s *Store) RemoveTagFromAllItems(ctx context.Context, cipher *vaultcrypto.Cipher, tag string) error {
	return s.rewriteTags(ctx, cipher, func(tags []string) []string {
		return lo.Without(tags, tag)
	})
}

func (s *Store) rewriteTags(ctx context.Context, cipher *vaultcrypto.Cipher, rewrite func([]string) []string) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return vaulterrors.NewStorageError(err)
	}

	txStore := s.WithTx(tx)

	items, err := txStore.GetAllItemsRecursive(ctx, cipher)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, item := range items {
		newTags := rewrite(item.Tags)
		if tagsEqual(item.Tags, newTags) {
			continue
		}

		item.Tags = newTags
		item.UpdatedAt = nowUTC()

		if err := txStore.UpdateItem(ctx, cipher, item); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	return nil
}

func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// AllTags returns the sorted, deduplicated set of every tag used by any
// item in the catalogue.
func (s *Store) AllTags(ctx context.Context, cipher *vaultcrypto.Cipher) ([]string, error) {
	items, err := s.GetAllItemsRecursive(ctx, cipher)
	if err != nil {
		return nil, err
	}

	var all []string
	for _, it := range items {
		all = append(all, it.Tags...)
	}

	return lo.Uniq(sortedStrings(all)), nil
}

func sortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	// insertion sort is fine here: tag counts per vault are small, and we
	// avoid importing sort for one call site with a one-line helper.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}

	return out
}

func wrapConstraintOrStorage(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "FOREIGN KEY") || strings.Contains(msg, "CHECK") {
		return vaulterrors.NewConstraintError(err)
	}

	return vaulterrors.NewStorageError(err)
}

// encryptedRow mirrors the physical items row: ciphertext columns as raw
// bytes, exactly as persisted.
type encryptedRow struct {
	id         string
	parentID   sql.NullString
	name       []byte
	itemType   []byte
	folderType []byte
	dataPath   []byte
	tags       []byte
	createdAt  []byte
	updatedAt  []byte
}

func encryptItem(cipher *vaultcrypto.Cipher, item VaultItem) (encryptedRow, error) {
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return encryptedRow{}, vaulterrors.NewSerializationError("marshal tags", err)
	}

	enc := func(col string, plaintext []byte) ([]byte, error) {
		ct, err := cipher.Encrypt(plaintext)
		if err != nil {
			return nil, fmt.Errorf("vaultdb: encrypt %s: %w", col, err)
		}

		return ct, nil
	}

	name, err := enc("name", []byte(item.Name))
	if err != nil {
		return encryptedRow{}, err
	}

	itemType, err := enc("item_type", []byte(item.ItemType))
	if err != nil {
		return encryptedRow{}, err
	}

	folderType, err := enc("folder_type", []byte(item.FolderType))
	if err != nil {
		return encryptedRow{}, err
	}

	dataPath, err := enc("data_path", []byte(item.DataPath))
	if err != nil {
		return encryptedRow{}, err
	}

	tags, err := enc("tags", tagsJSON)
	if err != nil {
		return encryptedRow{}, err
	}

	createdAt, err := enc("created_at", []byte(formatTimestamp(item.CreatedAt)))
	if err != nil {
		return encryptedRow{}, err
	}

	updatedAt, err := enc("updated_at", []byte(formatTimestamp(item.UpdatedAt)))
	if err != nil {
		return encryptedRow{}, err
	}

	row := encryptedRow{
		id:         item.ID,
		name:       name,
		itemType:   itemType,
		folderType: folderType,
		dataPath:   dataPath,
		tags:       tags,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}

	if len(item.ParentID) > 0 {
		row.parentID = sql.NullString{String: item.ParentID, Valid: true}
	}

	return row, nil
}

func decryptColumn(cipher *vaultcrypto.Cipher, name string, ciphertext []byte) (string, error) {
	plaintext, err := cipher.Decrypt(ciphertext)
	if err != nil {
		return "", vaulterrors.NewColumnDecryptionError(name, err)
	}

	return string(plaintext), nil
}

func decryptRow(cipher *vaultcrypto.Cipher, row encryptedRow) (VaultItem, error) {
	name, err := decryptColumn(cipher, "name", row.name)
	if err != nil {
		return VaultItem{}, err
	}

	itemType, err := decryptColumn(cipher, "item_type", row.itemType)
	if err != nil {
		return VaultItem{}, err
	}

	folderType, err := decryptColumn(cipher, "folder_type", row.folderType)
	if err != nil {
		return VaultItem{}, err
	}

	dataPath, err := decryptColumn(cipher, "data_path", row.dataPath)
	if err != nil {
		return VaultItem{}, err
	}

	tagsText, err := decryptColumn(cipher, "tags", row.tags)
	if err != nil {
		return VaultItem{}, err
	}

	createdAtText, err := decryptColumn(cipher, "created_at", row.createdAt)
	if err != nil {
		return VaultItem{}, err
	}

	updatedAtText, err := decryptColumn(cipher, "updated_at", row.updatedAt)
	if err != nil {
		return VaultItem{}, err
	}

	var tags []string
	if err := json.Unmarshal([]byte(tagsText), &tags); err != nil {
		tags = []string{} // tolerant fallback to empty on parse failure
	}

	createdAt, err := parseTimestamp(createdAtText)
	if err != nil {
		return VaultItem{}, vaulterrors.NewColumnDecryptionError("created_at", err)
	}

	updatedAt, err := parseTimestamp(updatedAtText)
	if err != nil {
		return VaultItem{}, vaulterrors.NewColumnDecryptionError("updated_at", err)
	}

	item := VaultItem{
		ID:         row.id,
		Name:       name,
		ItemType:   itemType,
		FolderType: folderType,
		DataPath:   dataPath,
		Tags:       tags,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	if row.parentID.Valid {
		item.ParentID = row.parentID.String
	}

	return item, nil
}
