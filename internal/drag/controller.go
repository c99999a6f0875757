// Package drag implements the boundary drag controller: a small state
// machine that hit-tests the shared boundaries between adjacent columns and
// moves them under pointer input, independent of any event-dispatch
// mechanism so it can be tested without a UI.
package drag

import (
	"math"

	"github.com/statementkit/colgrid/internal/geometry"
	"github.com/statementkit/colgrid/internal/model"
)

// HitTolerance is the half-width of the grab band around a boundary, in
// on-screen units.
const HitTolerance = 8.0

// State is the controller's position in its Idle→Dragging→Idle cycle.
type State int

const (
	// StateIdle means no boundary is being dragged.
	StateIdle State = iota
	// StateDragging means one boundary is tracking the pointer.
	StateDragging
)

// BoundaryStore is the geometry the controller reads and writes. It is
// consulted on every event, so the controller never holds stale column
// references across structural edits.
type BoundaryStore interface {
	Columns() []model.Column
	SetBoundary(i int, pdfX float64) (float64, bool)
}

// Controller tracks at most one active boundary drag. It is bound to the
// store once, at editor mount, and reused for the life of the session.
type Controller struct {
	store    BoundaryStore
	state    State
	boundary int
}

// NewController creates an idle controller over the given store.
func NewController(store BoundaryStore) *Controller {
	return &Controller{store: store, boundary: -1}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Boundary returns the index of the boundary being dragged, or -1 when
// idle. Boundary i sits between columns i and i+1.
func (c *Controller) Boundary() int {
	if c.state != StateDragging {
		return -1
	}
	return c.boundary
}

// Press hit-tests a pointer-down at screenX against every adjacent-column
// boundary and enters Dragging for the first one within HitTolerance.
// Returns true if a drag started. A transform that is not ready (page image
// not yet decoded) makes this a no-op.
func (c *Controller) Press(screenX float64, t geometry.Transform) bool {
	if c.state == StateDragging || !t.Ready() {
		return false
	}
	cols := c.store.Columns()
	for i := 0; i < len(cols)-1; i++ {
		boundaryX := t.PDFToScreen(cols[i].XMax)
		if math.Abs(screenX-boundaryX) <= HitTolerance {
			c.state = StateDragging
			c.boundary = i
			return true
		}
	}
	return false
}

// Move converts a pointer position to PDF space and applies it to the
// active boundary. The store clamps the value; the position actually
// applied is returned. Returns false when no drag is active.
func (c *Controller) Move(screenX float64, t geometry.Transform) (float64, bool) {
	if c.state != StateDragging || !t.Ready() {
		return 0, false
	}
	return c.store.SetBoundary(c.boundary, t.ScreenToPDF(screenX))
}

// Release ends the active drag and returns true if one was in progress.
// The caller resyncs the mapping and re-issues the parse preview on a true
// return; intermediate moves never round-trip.
func (c *Controller) Release() bool {
	if c.state != StateDragging {
		return false
	}
	c.state = StateIdle
	c.boundary = -1
	return true
}
