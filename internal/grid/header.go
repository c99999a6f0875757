package grid

import (
	"regexp"
	"strings"

	"github.com/statementkit/colgrid/internal/model"
)

// ibanPattern matches Polish-format account numbers in free header text:
// optional PL prefix, two check digits, six groups of four.
var ibanPattern = regexp.MustCompile(`(PL)?\d{2}(\s?\d{4}){6}`)

// HeaderFields is the editable list of whole-document metadata fields.
// Structurally simpler than the column store: no geometry, no drag, and
// edits commit immediately.
type HeaderFields struct {
	fields   []model.HeaderField
	revision uint64
}

// seededField pairs a known header-region key with its human label.
type seededField struct {
	fieldType model.HeaderFieldType
	label     string
	value     string
}

// SeedHeaderFields builds the initial field list from a preview's header
// region. Known keys are included only when non-empty; the preview's
// top-level bank name goes first when present; an IBAN-shaped substring in
// the raw header text not already captured as the account number is
// appended as a detected-but-unconfirmed field.
func SeedHeaderFields(p model.Preview) *HeaderFields {
	region := p.HeaderRegion
	known := []seededField{
		{model.FieldAccountNumber, "Account number", region.AccountNumber},
		{model.FieldOpeningBalance, "Opening balance", region.OpeningBalance},
		{model.FieldClosingBalance, "Closing balance", region.ClosingBalance},
		{model.FieldPeriodFrom, "Period from", region.PeriodFrom},
		{model.FieldPeriodTo, "Period to", region.PeriodTo},
	}

	h := &HeaderFields{}
	for _, k := range known {
		if strings.TrimSpace(k.value) == "" {
			continue
		}
		h.fields = append(h.fields, model.HeaderField{
			Type:     k.fieldType,
			Value:    k.value,
			RawLabel: k.label,
		})
	}

	if strings.TrimSpace(p.BankName) != "" {
		h.fields = append([]model.HeaderField{{
			Type:     model.FieldBankName,
			Value:    p.BankName,
			RawLabel: "Bank",
		}}, h.fields...)
	}

	if iban := ibanPattern.FindString(region.RawText); iban != "" {
		if normalizeAccount(iban) != normalizeAccount(region.AccountNumber) {
			h.fields = append(h.fields, model.HeaderField{
				Type:     model.FieldAccountNumber,
				Value:    iban,
				RawLabel: "IBAN (detected)",
			})
		}
	}

	return h
}

func normalizeAccount(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}

// Len returns the number of fields.
func (h *HeaderFields) Len() int {
	return len(h.fields)
}

// Revision returns a counter incremented by every mutation.
func (h *HeaderFields) Revision() uint64 {
	return h.revision
}

// Fields returns a copy of the current field list.
func (h *HeaderFields) Fields() []model.HeaderField {
	out := make([]model.HeaderField, len(h.fields))
	copy(out, h.fields)
	return out
}

// Add appends a blank skip-typed field and returns its index, so the
// editor can focus its value input.
func (h *HeaderFields) Add() int {
	h.fields = append(h.fields, model.HeaderField{Type: model.FieldSkip})
	h.revision++
	return len(h.fields) - 1
}

// Remove deletes field i. Out-of-range indices are ignored.
func (h *HeaderFields) Remove(i int) {
	if i < 0 || i >= len(h.fields) {
		return
	}
	h.fields = append(h.fields[:i], h.fields[i+1:]...)
	h.revision++
}

// SetType changes field i's semantic type.
func (h *HeaderFields) SetType(i int, t model.HeaderFieldType) {
	if i < 0 || i >= len(h.fields) || !t.Valid() {
		return
	}
	h.fields[i].Type = t
	h.revision++
}

// SetValue changes field i's value.
func (h *HeaderFields) SetValue(i int, value string) {
	if i < 0 || i >= len(h.fields) {
		return
	}
	h.fields[i].Value = value
	h.revision++
}

// Serialize flattens the list to the type→value map the backend consumes.
// Skip-typed fields and blank-after-trim values are dropped. Uniqueness per
// type is not enforced in the list, so the last value for a type wins here.
func (h *HeaderFields) Serialize() map[model.HeaderFieldType]string {
	out := make(map[model.HeaderFieldType]string)
	for _, f := range h.fields {
		if f.Type == model.FieldSkip {
			continue
		}
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		out[f.Type] = value
	}
	return out
}
