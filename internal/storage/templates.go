package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/statementkit/colgrid/internal/common"
	"github.com/statementkit/colgrid/internal/model"
)

// SaveTemplate stores a confirmed mapping for a bank, replacing any
// previously saved template for the same bank id.
func (s *SQLiteStorage) SaveTemplate(ctx context.Context, t model.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Replace rather than update: the column set may have changed shape.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM templates WHERE bank_id = ?`, t.BankID); err != nil {
		return fmt.Errorf("failed to clear previous template: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO templates (bank_id, bank_name) VALUES (?, ?)`,
		t.BankID, t.BankName)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	templateID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read template id: %w", err)
	}

	for i, col := range t.Columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO template_columns (template_id, position, label, col_type, x_min, x_max, header_y)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			templateID, i, col.Label, string(col.Type), col.XMin, col.XMax, col.HeaderY); err != nil {
			return fmt.Errorf("failed to insert template column %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit template: %w", err)
	}
	return nil
}

// GetTemplate loads the saved template for a bank id. Returns
// common.ErrNotFound when none exists.
func (s *SQLiteStorage) GetTemplate(ctx context.Context, bankID string) (*model.Template, error) {
	var t model.Template
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bank_id, bank_name, created_at FROM templates WHERE bank_id = ?`,
		bankID).Scan(&t.ID, &t.BankID, &t.BankName, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template for bank %q: %w", bankID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, col_type, x_min, x_max, header_y
		 FROM template_columns WHERE template_id = ? ORDER BY position`,
		t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var col model.Column
		var colType string
		if err := rows.Scan(&col.Label, &colType, &col.XMin, &col.XMax, &col.HeaderY); err != nil {
			return nil, fmt.Errorf("failed to scan template column: %w", err)
		}
		col.Type = model.ColumnType(colType)
		t.Columns = append(t.Columns, col)
		t.HeaderCells = append(t.HeaderCells, col.Label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template columns: %w", err)
	}

	return &t, nil
}

// ListTemplates returns all saved templates, most recent first, without
// their column details.
func (s *SQLiteStorage) ListTemplates(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.bank_id, t.bank_name, t.created_at,
		        (SELECT COUNT(*) FROM template_columns c WHERE c.template_id = t.id)
		 FROM templates t ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		var columnCount int
		if err := rows.Scan(&t.ID, &t.BankID, &t.BankName, &t.CreatedAt, &columnCount); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		// Column count stands in for the full column list in listings.
		t.Columns = make([]model.Column, columnCount)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// DeleteTemplate removes the saved template for a bank id. Returns
// common.ErrNotFound when none exists.
func (s *SQLiteStorage) DeleteTemplate(ctx context.Context, bankID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM templates WHERE bank_id = ?`, bankID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template for bank %q: %w", bankID, common.ErrNotFound)
	}
	return nil
}
