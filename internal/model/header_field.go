package model

// HeaderFieldType is the semantic role of a whole-document metadata field
// detected in a statement's header region.
type HeaderFieldType string

// Header field types understood by the backend. FieldSkip excludes a field
// from the submission.
const (
	FieldBankName       HeaderFieldType = "bankName"
	FieldAccountNumber  HeaderFieldType = "accountNumber"
	FieldAccountHolder  HeaderFieldType = "accountHolder"
	FieldPeriodFrom     HeaderFieldType = "periodFrom"
	FieldPeriodTo       HeaderFieldType = "periodTo"
	FieldOpeningBalance HeaderFieldType = "openingBalance"
	FieldClosingBalance HeaderFieldType = "closingBalance"
	FieldCurrency       HeaderFieldType = "currency"
	FieldSkip           HeaderFieldType = "skip"
)

// HeaderFieldTypes lists all header field types in display order.
var HeaderFieldTypes = []HeaderFieldType{
	FieldBankName,
	FieldAccountNumber,
	FieldAccountHolder,
	FieldPeriodFrom,
	FieldPeriodTo,
	FieldOpeningBalance,
	FieldClosingBalance,
	FieldCurrency,
	FieldSkip,
}

// Valid reports whether t is a known header field type.
func (t HeaderFieldType) Valid() bool {
	for _, known := range HeaderFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HeaderField is one piece of whole-document metadata. RawLabel is a human
// hint shown in the editor and never sent to the backend. Uniqueness per
// type is not enforced; on serialization the last value for a type wins.
type HeaderField struct {
	Type     HeaderFieldType `json:"fieldType"`
	Value    string          `json:"value"`
	RawLabel string          `json:"-"`
}
