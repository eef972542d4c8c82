package vaultcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ladzaretti/vaultcore/vault"
)

var sortOrders = map[string]vault.SortOrder{
	"name":         vault.SortByNameAsc,
	"name-desc":    vault.SortByNameDesc,
	"created":      vault.SortByCreatedAsc,
	"created-desc": vault.SortByCreatedDesc,
	"updated":      vault.SortByUpdatedAsc,
	"updated-desc": vault.SortByUpdatedDesc,
}

func newLsCmd() *cobra.Command {
	var (
		parentID string
		itemType string
		order    string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items in the vault",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := controller.GetItems(cmd.Context(), parentID, itemType, sortOrders[order])
			if err != nil {
				return err
			}

			for _, it := range items {
				kind := "item"
				if it.IsFolder() {
					kind = "folder"
				}

				tags := ""
				if len(it.Tags) > 0 {
					tags = " [" + strings.Join(it.Tags, ",") + "]"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s%s\n", it.ID, kind, it.Name, tags)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "list only children of this folder id")
	cmd.Flags().StringVar(&itemType, "type", "", "filter by item type")
	cmd.Flags().StringVar(&order, "order", "name", "sort order: name, name-desc, created, created-desc, updated, updated-desc")

	return cmd
}
