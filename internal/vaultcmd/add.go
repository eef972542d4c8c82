package vaultcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the vault",
	}

	cmd.AddCommand(newAddTextCmd(), newAddFileCmd(), newAddFolderCmd())

	return cmd
}

func newAddTextCmd() *cobra.Command {
	var (
		itemType string
		tags     string
		parentID string
	)

	cmd := &cobra.Command{
		Use:   "text <name> <content>",
		Short: "Add a text item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := controller.AddTextItem(cmd.Context(), args[0], args[1], itemType, splitTags(tags), parentID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "item added")

			return nil
		},
	}

	bindItemFlags(cmd, &itemType, &tags, &parentID, "text")

	return cmd
}

func newAddFileCmd() *cobra.Command {
	var (
		itemType string
		tags     string
		parentID string
	)

	cmd := &cobra.Command{
		Use:   "file <name> <path>",
		Short: "Add the contents of a file as an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := controller.AddFileItem(cmd.Context(), args[0], args[1], splitTags(tags), parentID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "item added")

			return nil
		},
	}

	bindItemFlags(cmd, &itemType, &tags, &parentID, "file")

	return cmd
}

func newAddFolderCmd() *cobra.Command {
	var (
		folderType string
		parentID   string
	)

	cmd := &cobra.Command{
		Use:   "folder <name>",
		Short: "Add a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := controller.AddFolder(cmd.Context(), args[0], parentID, folderType); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "folder added")

			return nil
		},
	}

	cmd.Flags().StringVar(&folderType, "folder-type", "generic", "folder type tag")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent folder id")

	return cmd
}

func bindItemFlags(cmd *cobra.Command, itemType, tags, parentID *string, defaultType string) {
	cmd.Flags().StringVar(itemType, "type", defaultType, "item type")
	cmd.Flags().StringVar(tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(parentID, "parent", "", "parent folder id")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}

	return tags
}
