// Package grid owns the editable column grid of a statement table: an
// ordered list of column descriptors, the structural operations that mutate
// it, and the derived index→type mapping the backend consumes.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/statementkit/colgrid/internal/model"
)

const (
	// MinColumnWidth is the narrowest a column may become, in PDF units.
	// Boundary drags and removals never produce a thinner column.
	MinColumnWidth = 10.0

	// stealThreshold is the width above which Add splits the last column
	// instead of widening the table.
	stealThreshold = 60.0

	// stealFraction is the share of the last column's width a split-style
	// Add takes for the new column.
	stealFraction = 0.4

	// defaultAddWidth is the width of an appended column when the table
	// widens instead of splitting.
	defaultAddWidth = 80.0
)

// ColumnStore is the single source of truth for column geometry and
// classification. All mutations go through its methods; operations that
// receive an out-of-range index are silent no-ops, and the store never
// shrinks below one column. The revision counter lets consumers detect
// structural change without diffing.
type ColumnStore struct {
	columns  []model.Column
	revision uint64
}

// NewColumnStore builds a store from detected or template columns. The
// slice is copied; the caller's view never aliases store state.
func NewColumnStore(columns []model.Column) *ColumnStore {
	s := &ColumnStore{columns: make([]model.Column, len(columns))}
	copy(s.columns, columns)
	return s
}

// Len returns the number of columns.
func (s *ColumnStore) Len() int {
	return len(s.columns)
}

// Revision returns a counter incremented by every mutation.
func (s *ColumnStore) Revision() uint64 {
	return s.revision
}

// Columns returns a copy of the current column list.
func (s *ColumnStore) Columns() []model.Column {
	out := make([]model.Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column returns the column at index i, if it exists.
func (s *ColumnStore) Column(i int) (model.Column, bool) {
	if i < 0 || i >= len(s.columns) {
		return model.Column{}, false
	}
	return s.columns[i], true
}

// TotalWidth returns the combined width of all columns in PDF units.
func (s *ColumnStore) TotalWidth() float64 {
	var total float64
	for _, c := range s.columns {
		total += c.Width()
	}
	return total
}

// Add appends a new skip-typed column at the right edge. When the current
// last column is wider than stealThreshold the new column takes the right
// stealFraction of it, preserving the table's total width; otherwise the
// table widens by defaultAddWidth.
func (s *ColumnStore) Add() {
	if len(s.columns) == 0 {
		s.columns = append(s.columns, model.Column{
			Label: "column 1",
			Type:  model.TypeSkip,
			XMin:  0,
			XMax:  defaultAddWidth,
		})
		s.revision++
		return
	}

	last := &s.columns[len(s.columns)-1]
	col := model.Column{
		Label:   fmt.Sprintf("column %d", len(s.columns)+1),
		Type:    model.TypeSkip,
		HeaderY: last.HeaderY,
	}
	if last.Width() > stealThreshold {
		col.XMax = last.XMax
		col.XMin = last.XMax - last.Width()*stealFraction
		last.XMax = col.XMin
	} else {
		col.XMin = last.XMax
		col.XMax = last.XMax + defaultAddWidth
	}
	s.columns = append(s.columns, col)
	s.revision++
}

// Split halves column i at its midpoint. The original keeps the left half;
// a new skip-typed column holding the right half is inserted immediately
// after it, inheriting the header offset. Out-of-range indices are ignored.
func (s *ColumnStore) Split(i int) {
	if i < 0 || i >= len(s.columns) {
		return
	}
	orig := &s.columns[i]
	mid := (orig.XMin + orig.XMax) / 2
	right := model.Column{
		Label:   orig.Label + " (2)",
		Type:    model.TypeSkip,
		XMin:    mid,
		XMax:    orig.XMax,
		HeaderY: orig.HeaderY,
	}
	orig.XMax = mid
	s.columns = append(s.columns, model.Column{})
	copy(s.columns[i+2:], s.columns[i+1:])
	s.columns[i+1] = right
	s.revision++
}

// Remove deletes column i and hands its freed width to a neighbor, the
// left one when both exist. Refuses when only one column remains.
func (s *ColumnStore) Remove(i int) {
	if i < 0 || i >= len(s.columns) || len(s.columns) <= 1 {
		return
	}
	switch {
	case i > 0:
		s.columns[i-1].XMax = s.columns[i].XMax
	case i < len(s.columns)-1:
		s.columns[i+1].XMin = s.columns[i].XMin
	}
	s.columns = append(s.columns[:i], s.columns[i+1:]...)
	s.revision++
}

// Rename sets column i's label. Whitespace is trimmed; an empty result
// keeps the previous label.
func (s *ColumnStore) Rename(i int, label string) {
	if i < 0 || i >= len(s.columns) {
		return
	}
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return
	}
	s.columns[i].Label = trimmed
	s.revision++
}

// Retype assigns a new semantic type to column i.
func (s *ColumnStore) Retype(i int, t model.ColumnType) {
	if i < 0 || i >= len(s.columns) || !t.Valid() {
		return
	}
	s.columns[i].Type = t
	s.revision++
}

// SetBoundary moves the shared boundary between columns i and i+1 to pdfX,
// clamped so that column i keeps at least MinColumnWidth and the boundary
// never crosses into the next boundary's minimum sliver. Returns the value
// actually applied and false if i does not address a boundary.
func (s *ColumnStore) SetBoundary(i int, pdfX float64) (float64, bool) {
	if i < 0 || i >= len(s.columns)-1 {
		return 0, false
	}
	left := s.columns[i].XMin + MinColumnWidth
	right := math.Inf(1)
	if i+2 < len(s.columns) {
		right = s.columns[i+2].XMin - MinColumnWidth
	}
	clamped := math.Max(left, math.Min(pdfX, right))
	s.columns[i].XMax = clamped
	s.columns[i+1].XMin = clamped
	s.revision++
	return clamped, true
}

// Mapping rebuilds the backend-facing index→type mapping from scratch.
// Indices shift under insert and remove, so the mapping is always derived
// from the current order, never patched.
func (s *ColumnStore) Mapping() map[string]model.ColumnType {
	mapping := make(map[string]model.ColumnType)
	for i, c := range s.columns {
		if c.Type == model.TypeSkip {
			continue
		}
		mapping[strconv.Itoa(i)] = c.Type
	}
	return mapping
}

// BoundsOf serializes a column list for the backend. withTypes includes
// label and type per column, as confirm-mapping requires; parse-preview
// sends geometry only.
func BoundsOf(columns []model.Column, withTypes bool) []model.ColumnBound {
	out := make([]model.ColumnBound, len(columns))
	for i, c := range columns {
		out[i] = model.ColumnBound{XMin: c.XMin, XMax: c.XMax}
		if withTypes {
			out[i].Label = c.Label
			out[i].Type = c.Type
		}
	}
	return out
}

// Bounds serializes the current geometry for the backend.
func (s *ColumnStore) Bounds(withTypes bool) []model.ColumnBound {
	return BoundsOf(s.columns, withTypes)
}

// Labels returns the current column labels in order, for template saving
// and the confirm payload's header cells.
func (s *ColumnStore) Labels() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Label
	}
	return out
}
