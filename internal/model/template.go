package model

import (
	"fmt"
	"time"
)

// Template is a previously confirmed column mapping for a specific bank.
// A matching template can pre-seed the editor for a new preview of the
// same bank; PartialMatch marks a low-confidence match.
type Template struct {
	ID           int64     `json:"id,omitempty"`
	BankID       string    `json:"bankId"`
	BankName     string    `json:"bankName"`
	Columns      []Column  `json:"columns"`
	HeaderCells  []string  `json:"headerCells"`
	PartialMatch bool      `json:"_partial_match,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Validate checks that the template can seed an editor.
func (t Template) Validate() error {
	if t.BankID == "" {
		return fmt.Errorf("template: bank id is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("template %q: at least one column is required", t.BankID)
	}
	for _, col := range t.Columns {
		if err := col.Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.BankID, err)
		}
	}
	return nil
}
