package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statementkit/colgrid/internal/backend"
	"github.com/statementkit/colgrid/internal/common"
	"github.com/statementkit/colgrid/internal/session"
	"github.com/statementkit/colgrid/internal/storage"
	"github.com/statementkit/colgrid/internal/tui"
)

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <statement.pdf>",
		Short: "Upload a statement PDF and edit its column mapping",
		Long: `Uploads a statement PDF to the analysis backend, seeds the column grid
from the detected layout (or a saved template), and opens the interactive
editor. Confirming the mapping starts the full backend pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	file, err := os.Open(path)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	client := backend.NewClient(viper.GetString("backend.url"))

	bar := progressbar.DefaultBytes(info.Size(), "uploading statement")
	preview, err := client.UploadPreview(ctx, info.Name(), io.TeeReader(file, bar))
	if err != nil {
		return common.NewUserError("upload failed", err)
	}
	_ = bar.Finish()

	// Template store is best-effort: the editor works without it.
	var store *storage.SQLiteStorage
	if dbPath, dbErr := databasePath(); dbErr == nil {
		store, dbErr = storage.NewSQLiteStorage(dbPath)
		if dbErr == nil {
			dbErr = store.Migrate(ctx)
		}
		if dbErr != nil {
			slog.Warn("Template store unavailable", "error", dbErr)
			store = nil
		}
	}
	if store != nil {
		defer func() { _ = store.Close() }()

		// The backend had no template match; a locally saved one may
		// still fit this bank.
		if preview.Template == nil && preview.BankID != "" {
			tpl, tplErr := store.GetTemplate(ctx, preview.BankID)
			switch {
			case tplErr == nil:
				preview.Template = tpl
				slog.Info("Using locally saved template", "bank_id", preview.BankID)
			case !errors.Is(tplErr, common.ErrNotFound):
				slog.Warn("Failed to look up local template", "error", tplErr)
			}
		}
	}

	var saver session.TemplateSaver
	if store != nil {
		saver = store
	}
	sess, err := session.New(*preview, client, saver)
	if err != nil {
		return fmt.Errorf("failed to start editing session: %w", err)
	}

	result, err := tui.Run(ctx, sess)
	if err != nil {
		return err
	}
	if result == nil {
		slog.Info("Editor closed without confirming")
		return nil
	}

	fmt.Printf("Mapping confirmed, pipeline started: %s\n", result.PipelineID)
	return nil
}
