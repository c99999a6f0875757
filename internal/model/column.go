// Package model defines the data types shared across the column-mapping
// editor: columns, header fields, previews, templates and submissions.
package model

import (
	"fmt"
)

// ColumnType is the semantic role of a statement table column.
type ColumnType string

// Column types understood by the parsing backend. TypeSkip excludes a
// column from the mapping entirely.
const (
	TypeDate         ColumnType = "date"
	TypeValueDate    ColumnType = "valueDate"
	TypeDescription  ColumnType = "description"
	TypeCounterparty ColumnType = "counterparty"
	TypeAmount       ColumnType = "amount"
	TypeDebit        ColumnType = "debit"
	TypeCredit       ColumnType = "credit"
	TypeBalance      ColumnType = "balance"
	TypeBankType     ColumnType = "bankType"
	TypeReference    ColumnType = "reference"
	TypeSkip         ColumnType = "skip"
)

// ColumnTypes lists all column types in display order. The TUI cycles
// through this slice when retyping a column.
var ColumnTypes = []ColumnType{
	TypeDate,
	TypeValueDate,
	TypeDescription,
	TypeCounterparty,
	TypeAmount,
	TypeDebit,
	TypeCredit,
	TypeBalance,
	TypeBankType,
	TypeReference,
	TypeSkip,
}

// Valid reports whether t is a known column type.
func (t ColumnType) Valid() bool {
	for _, known := range ColumnTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Column is one detected or user-created table column. Bounds are in PDF
// coordinate units, independent of any on-screen rendering size.
type Column struct {
	Label   string     `json:"label"`
	Type    ColumnType `json:"colType"`
	XMin    float64    `json:"xMin"`
	XMax    float64    `json:"xMax"`
	HeaderY float64    `json:"headerY"`
}

// Width returns the column's horizontal extent in PDF units.
func (c Column) Width() float64 {
	return c.XMax - c.XMin
}

// Validate checks the column invariants.
func (c Column) Validate() error {
	if c.XMin >= c.XMax {
		return fmt.Errorf("column %q: xMin %.2f must be less than xMax %.2f", c.Label, c.XMin, c.XMax)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("column %q: unknown column type %q", c.Label, c.Type)
	}
	return nil
}

// ColumnTypeInfo is the backend's display metadata for a column type.
type ColumnTypeInfo struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// ColumnBound is the serialized geometry of one column as sent to the
// backend. Label and Type are populated for confirm-mapping requests and
// left empty for parse-preview requests.
type ColumnBound struct {
	XMin  float64    `json:"xMin"`
	XMax  float64    `json:"xMax"`
	Label string     `json:"label,omitempty"`
	Type  ColumnType `json:"colType,omitempty"`
}
