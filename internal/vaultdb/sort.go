package vaultdb

import (
	"sort"
	"strings"
)

// SortOrder selects how GetItems orders its decrypted results. Sorting must
// happen after decryption: the column values a SQL ORDER BY would need are
// ciphertext on disk.
type SortOrder int

const (
	// SortByCreatedDesc is the zero value and the default order: folders
	// before leaf items, then newest first by creation time.
	SortByCreatedDesc SortOrder = iota
	// SortByNameAsc sorts folders before leaf items, then by normalized
	// name, ascending.
	SortByNameAsc
	SortByNameDesc
	SortByCreatedAsc
	SortByUpdatedAsc
	SortByUpdatedDesc
)

// Sort orders items in place according to order. Folders always sort ahead
// of leaf items regardless of the chosen order; within each group the
// requested key decides.
func Sort(items []VaultItem, order SortOrder) {
	less := lessFuncs[order]
	if less == nil {
		less = lessFuncs[SortByCreatedDesc]
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}

		return less(a, b)
	})
}

var lessFuncs = map[SortOrder]func(a, b VaultItem) bool{
	SortByNameAsc:    func(a, b VaultItem) bool { return normalizeName(a.Name) < normalizeName(b.Name) },
	SortByNameDesc:   func(a, b VaultItem) bool { return normalizeName(a.Name) > normalizeName(b.Name) },
	SortByCreatedAsc: func(a, b VaultItem) bool { return a.CreatedAt.Lt(b.CreatedAt) },
	SortByCreatedDesc: func(a, b VaultItem) bool {
		return a.CreatedAt.Gt(b.CreatedAt)
	},
	SortByUpdatedAsc: func(a, b VaultItem) bool { return a.UpdatedAt.Lt(b.UpdatedAt) },
	SortByUpdatedDesc: func(a, b VaultItem) bool {
		return a.UpdatedAt.Gt(b.UpdatedAt)
	},
}

// normalizeName lowercases name and strips a leading "https://", "http://",
// and "www." (independently, in that order) so that "https://www.Example.com"
// and "example.com" sort adjacently regardless of which prefixes are present.
func normalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	lower = strings.TrimPrefix(lower, "https://")
	lower = strings.TrimPrefix(lower, "http://")
	lower = strings.TrimPrefix(lower, "www.")

	return lower
}
