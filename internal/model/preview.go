package model

// PageDescriptor gives one page's dimensions in PDF units. Rendered page
// images are scaled against these to recover PDF-space coordinates.
type PageDescriptor struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HeaderRegion is the detected free-text area of a statement containing
// document-level metadata rather than tabular rows.
type HeaderRegion struct {
	RawText        string `json:"raw_text"`
	AccountNumber  string `json:"accountNumber"`
	AccountHolder  string `json:"accountHolder"`
	OpeningBalance string `json:"openingBalance"`
	ClosingBalance string `json:"closingBalance"`
	PeriodFrom     string `json:"periodFrom"`
	PeriodTo       string `json:"periodTo"`
}

// Preview is the backend's analysis of an uploaded statement PDF: detected
// columns, header region, page geometry and an optional matched template.
// It seeds the editor and is read-only afterwards.
type Preview struct {
	Status       string                    `json:"status"`
	BankID       string                    `json:"bankId"`
	BankName     string                    `json:"bankName"`
	Warnings     []string                  `json:"warnings"`
	AutoMapping  map[string]ColumnType     `json:"autoMapping"`
	ColumnTypes  map[string]ColumnTypeInfo `json:"columnTypes"`
	Columns      []Column                  `json:"columns"`
	HeaderRegion HeaderRegion              `json:"headerRegion"`
	Template     *Template                 `json:"template,omitempty"`
	Pages        []PageDescriptor          `json:"pages"`
	FilePath     string                    `json:"filePath"`
}

// Transaction is one sample row returned by a parse-preview round-trip.
// The full transaction set only exists behind the confirm pipeline.
type Transaction struct {
	Date         string  `json:"date"`
	Counterparty string  `json:"counterparty"`
	Title        string  `json:"title"`
	Amount       float64 `json:"amount"`
	BalanceAfter float64 `json:"balanceAfter"`
}

// ParseResult is the backend's response to a parse-preview request.
type ParseResult struct {
	Status           string        `json:"status"`
	TransactionCount int           `json:"transactionCount"`
	Transactions     []Transaction `json:"transactions"`
}

// Submission is the confirm-mapping payload: the full editor state
// serialized for the backend pipeline.
type Submission struct {
	FilePath     string                     `json:"filePath"`
	Mapping      map[string]ColumnType      `json:"columnMapping"`
	HeaderCells  []string                   `json:"headerCells"`
	Bounds       []ColumnBound              `json:"columnBounds"`
	HeaderFields map[HeaderFieldType]string `json:"headerFields"`
	SaveTemplate bool                       `json:"saveTemplate,omitempty"`
	TemplateName string                     `json:"templateName,omitempty"`
}

// ConfirmResult identifies the pipeline run started by a confirmed mapping.
type ConfirmResult struct {
	Status     string `json:"status"`
	PipelineID string `json:"pipelineId"`
	ReportID   string `json:"reportId,omitempty"`
}
