package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statementkit/colgrid/internal/storage"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage locally saved column-mapping templates",
	}
	cmd.AddCommand(templatesListCmd())
	cmd.AddCommand(templatesDeleteCmd())
	return cmd
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openTemplateStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			templates, err := store.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println("No templates saved yet.")
				return nil
			}

			fmt.Printf("%-20s %-30s %8s  %s\n", "BANK ID", "BANK NAME", "COLUMNS", "SAVED")
			for _, t := range templates {
				fmt.Printf("%-20s %-30s %8d  %s\n",
					t.BankID, t.BankName, len(t.Columns), t.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func templatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <bank-id>",
		Short: "Delete the saved template for a bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openTemplateStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted template for %s\n", args[0])
			return nil
		},
	}
}

func openTemplateStore(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
