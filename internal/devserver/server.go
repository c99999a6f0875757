// Package devserver is a self-contained fake of the statement-analysis
// backend. It serves the preview, page-image, parse-preview and confirm
// endpoints with synthetic data so the editor can be exercised and
// integration-tested without the real pipeline.
package devserver

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/statementkit/colgrid/internal/model"
)

// Page geometry of the synthetic statement, in PDF units (A4 portrait).
const (
	pageWidth  = 595.0
	pageHeight = 842.0
	// renderScale is the fake renderer's pixels-per-PDF-unit.
	renderScale = 2
)

// Handler holds the HTTP handlers for the fake backend.
type Handler struct {
	mu       sync.Mutex
	uploads  int
	previews map[string]model.Preview
}

// NewHandler creates a fake backend handler.
func NewHandler() *Handler {
	return &Handler{previews: make(map[string]model.Preview)}
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/preview", h.handlePreview)
	mux.HandleFunc("/api/preview/page", h.handlePageImage)
	mux.HandleFunc("/api/parse-preview", h.handleParsePreview)
	mux.HandleFunc("/api/confirm", h.handleConfirm)
	mux.HandleFunc("/api/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	// Parse multipart form (max 32MB)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded, use form field 'file'")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	h.mu.Lock()
	h.uploads++
	filePath := fmt.Sprintf("/tmp/statements/upload-%04d.pdf", h.uploads)
	preview := syntheticPreview(filePath)
	h.previews[filePath] = preview
	h.mu.Unlock()

	slog.Info("Dev server produced preview", "filename", header.Filename, "file_path", filePath)
	writeJSON(w, preview)
}

// syntheticPreview fabricates the analysis a real backend would return for
// a typical Polish bank statement.
func syntheticPreview(filePath string) model.Preview {
	return model.Preview{
		Status:   "ok",
		BankID:   "devbank",
		BankName: "Dev Bank S.A.",
		Warnings: []string{"synthetic preview: column detection is canned"},
		AutoMapping: map[string]model.ColumnType{
			"0": model.TypeDate,
			"1": model.TypeDescription,
			"2": model.TypeAmount,
			"3": model.TypeBalance,
		},
		ColumnTypes: map[string]model.ColumnTypeInfo{
			string(model.TypeDate):         {Label: "Date", Icon: "calendar"},
			string(model.TypeDescription):  {Label: "Description", Icon: "text"},
			string(model.TypeCounterparty): {Label: "Counterparty", Icon: "user"},
			string(model.TypeAmount):       {Label: "Amount", Icon: "coins"},
			string(model.TypeBalance):      {Label: "Balance", Icon: "scale"},
			string(model.TypeSkip):         {Label: "Skip", Icon: "cross"},
		},
		Columns: []model.Column{
			{Label: "Data", Type: model.TypeDate, XMin: 40, XMax: 120, HeaderY: 180},
			{Label: "Opis operacji", Type: model.TypeDescription, XMin: 120, XMax: 330, HeaderY: 180},
			{Label: "Kwota", Type: model.TypeAmount, XMin: 330, XMax: 450, HeaderY: 180},
			{Label: "Saldo", Type: model.TypeBalance, XMin: 450, XMax: 555, HeaderY: 180},
		},
		HeaderRegion: model.HeaderRegion{
			RawText: "Dev Bank S.A.\nRachunek: PL61 1090 1014 0000 0712 1981 2874\n" +
				"Okres: 2026-07-01 - 2026-07-31\nSaldo początkowe: 12 450,00",
			AccountNumber:  "PL61 1090 1014 0000 0712 1981 2874",
			OpeningBalance: "12 450,00",
			ClosingBalance: "13 105,44",
			PeriodFrom:     "2026-07-01",
			PeriodTo:       "2026-07-31",
		},
		Pages:    []model.PageDescriptor{{Width: pageWidth, Height: pageHeight}},
		FilePath: filePath,
	}
}

func (h *Handler) handlePageImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	filePath := r.URL.Query().Get("filePath")
	h.mu.Lock()
	_, ok := h.previews[filePath]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no preview for %q", filePath))
		return
	}

	// A blank page at the declared render scale; only the dimensions
	// matter to the editor's coordinate transform.
	img := image.NewRGBA(image.Rect(0, 0, pageWidth*renderScale, pageHeight*renderScale))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		slog.Error("Failed to encode page image", "error", err)
	}
}

type parsePreviewRequest struct {
	FilePath      string                      `json:"filePath"`
	ColumnMapping map[string]model.ColumnType `json:"columnMapping"`
	ColumnBounds  []model.ColumnBound         `json:"columnBounds"`
}

func (h *Handler) handleParsePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req parsePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	h.mu.Lock()
	_, ok := h.previews[req.FilePath]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no preview for %q", req.FilePath))
		return
	}
	if len(req.ColumnBounds) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "columnBounds must not be empty")
		return
	}

	writeJSON(w, syntheticRows(req.ColumnMapping))
}

// syntheticRows fabricates sample transactions, populating only the fields
// the current mapping actually classifies.
func syntheticRows(mapping map[string]model.ColumnType) model.ParseResult {
	mapped := make(map[model.ColumnType]bool)
	for _, t := range mapping {
		mapped[t] = true
	}

	const rowCount = 20
	rows := make([]model.Transaction, rowCount)
	balance := 12450.00
	for i := range rows {
		amount := float64(10+i*7) * signFor(i)
		balance += amount
		row := model.Transaction{}
		if mapped[model.TypeDate] || mapped[model.TypeValueDate] {
			row.Date = fmt.Sprintf("2026-07-%02d", i+1)
		}
		if mapped[model.TypeCounterparty] {
			row.Counterparty = fmt.Sprintf("Counterparty %d", i+1)
		}
		if mapped[model.TypeDescription] {
			row.Title = fmt.Sprintf("Transfer %d/2026", i+1)
		}
		if mapped[model.TypeAmount] || mapped[model.TypeDebit] || mapped[model.TypeCredit] {
			row.Amount = amount
		}
		if mapped[model.TypeBalance] {
			row.BalanceAfter = balance
		}
		rows[i] = row
	}
	return model.ParseResult{
		Status:           "ok",
		TransactionCount: rowCount,
		Transactions:     rows,
	}
}

func signFor(i int) float64 {
	if i%3 == 0 {
		return 1
	}
	return -1
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if sub.FilePath == "" {
		writeError(w, http.StatusBadRequest, "filePath is required")
		return
	}
	if len(sub.Mapping) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "mapping must classify at least one column")
		return
	}

	slog.Info("Dev server confirmed mapping",
		"file_path", sub.FilePath,
		"mapped_columns", len(sub.Mapping),
		"save_template", sub.SaveTemplate)

	writeJSON(w, model.ConfirmResult{
		Status:     "ok",
		PipelineID: fmt.Sprintf("pipeline-%s", strings.TrimPrefix(sub.FilePath, "/tmp/statements/")),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"error":  msg,
	})
}
