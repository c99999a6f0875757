// Package session orchestrates one editing session over a previewed
// statement: it owns the column store and header fields, keeps the derived
// mapping in sync after every mutation, and round-trips parse previews
// against the backend.
package session

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	// Page images arrive as PNG or JPEG; registration is enough, only the
	// dimensions are read.
	_ "image/jpeg"
	_ "image/png"

	"github.com/statementkit/colgrid/internal/common"
	"github.com/statementkit/colgrid/internal/geometry"
	"github.com/statementkit/colgrid/internal/grid"
	"github.com/statementkit/colgrid/internal/model"
)

// MaxPreviewRows caps how many sample transactions a parse preview keeps.
const MaxPreviewRows = 15

// Session is one editing session. The column store and header field list
// are owned exclusively by the session; external consumers only ever see
// the serialized submission.
type Session struct {
	columns   *grid.ColumnStore
	headers   *grid.HeaderFields
	client    ParserClient
	templates TemplateSaver

	mu           sync.Mutex
	preview      model.Preview
	naturalWidth float64
	seq          uint64
	lastResult   *model.ParseResult
}

// New seeds a session from a backend preview. A fully matched template
// takes precedence over the detected columns; when neither yields any
// column, a single full-page skip column is created so the editor always
// has something to work with. templates may be nil when template saving is
// unavailable.
func New(preview model.Preview, client ParserClient, templates TemplateSaver) (*Session, error) {
	if preview.FilePath == "" {
		return nil, common.ErrNoPreview
	}
	if len(preview.Pages) == 0 {
		return nil, fmt.Errorf("preview for %s has no pages", preview.FilePath)
	}

	columns := preview.Columns
	if tpl := preview.Template; tpl != nil && !tpl.PartialMatch {
		if err := tpl.Validate(); err != nil {
			slog.Warn("Ignoring invalid matched template", "bank_id", tpl.BankID, "error", err)
		} else {
			columns = tpl.Columns
			slog.Info("Seeding columns from matched template", "bank_id", tpl.BankID)
		}
	}
	if len(columns) == 0 {
		columns = []model.Column{{
			Label: "column 1",
			Type:  model.TypeSkip,
			XMin:  0,
			XMax:  preview.Pages[0].Width,
		}}
	}

	return &Session{
		columns:   grid.NewColumnStore(columns),
		headers:   grid.SeedHeaderFields(preview),
		client:    client,
		templates: templates,
		preview:   preview,
	}, nil
}

// Columns returns the session's column store.
func (s *Session) Columns() *grid.ColumnStore {
	return s.columns
}

// Headers returns the session's header field list.
func (s *Session) Headers() *grid.HeaderFields {
	return s.headers
}

// Preview returns the seeding preview.
func (s *Session) Preview() model.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// LoadPageImage fetches the rendered bitmap for a page and records its
// natural width, which is unknowable before decode. Until this succeeds
// the coordinate transform reports not ready and overlay interaction is
// inert.
func (s *Session) LoadPageImage(ctx context.Context, page int) ([]byte, error) {
	data, err := s.client.PageImage(ctx, s.Preview().FilePath, page)
	if err != nil {
		return nil, fmt.Errorf("failed to load page image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}

	s.mu.Lock()
	s.naturalWidth = float64(cfg.Width)
	s.mu.Unlock()

	slog.Debug("Page image loaded", "page", page, "natural_width", cfg.Width)
	return data, nil
}

// SetNaturalWidth records the rendered page width directly. Surfaces that
// render the page themselves (or tests) use this instead of LoadPageImage.
func (s *Session) SetNaturalWidth(width float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.naturalWidth = width
}

// Transform returns the coordinate transform for the current page image at
// the given viewport width. Callers re-read it on every drag tick so
// viewport resizes between gestures are honored.
func (s *Session) Transform(viewportWidth float64) geometry.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return geometry.NewTransform(s.naturalWidth, s.preview.Pages[0].Width, viewportWidth)
}

// Mapping rebuilds the backend-facing index→type mapping from the current
// column store.
func (s *Session) Mapping() map[string]model.ColumnType {
	return s.columns.Mapping()
}

// Snapshot is a point-in-time copy of the editable state. The stores are
// owned by the goroutine that mutates them; a round-trip that leaves it
// carries a snapshot taken there instead of reading the live stores.
type Snapshot struct {
	Columns      []model.Column
	Mapping      map[string]model.ColumnType
	HeaderCells  []string
	HeaderFields map[model.HeaderFieldType]string
}

// Snapshot copies the current grid and header state. Must be called on the
// goroutine that performs mutations, before the round-trip is launched.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Columns:      s.columns.Columns(),
		Mapping:      s.columns.Mapping(),
		HeaderCells:  s.columns.Labels(),
		HeaderFields: s.headers.Serialize(),
	}
}

// LastResult returns the most recent non-stale parse preview, if any.
func (s *Session) LastResult() *model.ParseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// RefreshPreview posts a snapshot's geometry and mapping to the backend
// and returns a sample of parsed rows. Every call invalidates all in-flight
// calls: a response that is no longer the latest issued is dropped with
// ErrStalePreview, so rapid edits cannot render out of order. Failures do
// not roll back any editor state.
func (s *Session) RefreshPreview(ctx context.Context, snap Snapshot) (*model.ParseResult, error) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	filePath := s.preview.FilePath
	s.mu.Unlock()

	result, err := s.client.ParsePreview(ctx, filePath, snap.Mapping, grid.BoundsOf(snap.Columns, false))

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq {
		return nil, common.ErrStalePreview
	}
	if err != nil {
		return nil, fmt.Errorf("parse preview failed: %w", err)
	}
	if len(result.Transactions) > MaxPreviewRows {
		result.Transactions = result.Transactions[:MaxPreviewRows]
	}
	s.lastResult = result
	return result, nil
}

// Submission serializes a snapshot of the editor state for the confirm
// call.
func (s *Session) Submission(snap Snapshot, saveTemplate bool, templateName string) model.Submission {
	return model.Submission{
		FilePath:     s.Preview().FilePath,
		Mapping:      snap.Mapping,
		HeaderCells:  snap.HeaderCells,
		Bounds:       grid.BoundsOf(snap.Columns, true),
		HeaderFields: snap.HeaderFields,
		SaveTemplate: saveTemplate,
		TemplateName: templateName,
	}
}

// Confirm commits the snapshotted mapping and starts the backend pipeline.
// On success with saveTemplate set, the mapping is also stored locally so a
// later preview for the same bank can be pre-seeded without the backend's
// help.
func (s *Session) Confirm(ctx context.Context, snap Snapshot, saveTemplate bool, templateName string) (*model.ConfirmResult, error) {
	sub := s.Submission(snap, saveTemplate, templateName)
	result, err := s.client.ConfirmMapping(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("confirm mapping failed: %w", err)
	}

	if saveTemplate && s.templates != nil {
		preview := s.Preview()
		tpl := model.Template{
			BankID:      preview.BankID,
			BankName:    preview.BankName,
			Columns:     snap.Columns,
			HeaderCells: snap.HeaderCells,
		}
		if tpl.BankID == "" {
			tpl.BankID = templateName
		}
		if err := s.templates.SaveTemplate(ctx, tpl); err != nil {
			// Local template persistence must not fail the pipeline start.
			slog.Warn("Failed to save template locally", "bank_id", tpl.BankID, "error", err)
		}
	}

	return result, nil
}
