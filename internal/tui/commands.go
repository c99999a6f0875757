package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/statementkit/colgrid/internal/common"
)

// loadPageImage fetches the first page's rendered bitmap so the session
// learns the image's natural width.
func (m Model) loadPageImage() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := sess.LoadPageImage(ctx, 0)
		return pageImageMsg{err: err}
	}
}

// refreshPreview issues a sequenced parse-preview round-trip. Responses
// superseded by a newer edit resolve to no message at all, so the last
// rendered preview always corresponds to the latest issued request.
//
// The stores are mutated on the event-loop goroutine while commands run
// concurrently, so the state is snapshotted here, before the command
// closure is launched; it must never read the live stores.
func (m Model) refreshPreview() tea.Cmd {
	sess := m.sess
	snap := sess.Snapshot()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := sess.RefreshPreview(ctx, snap)
		if errors.Is(err, common.ErrStalePreview) {
			return nil
		}
		return previewMsg{result: result, err: err}
	}
}

// confirmMapping serializes the editor state and starts the pipeline. The
// snapshot is taken on the event-loop goroutine, as in refreshPreview.
func (m Model) confirmMapping(saveTemplate bool) tea.Cmd {
	sess := m.sess
	snap := sess.Snapshot()
	templateName := m.sess.Preview().BankID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := sess.Confirm(ctx, snap, saveTemplate, templateName)
		return confirmMsg{result: result, err: err}
	}
}
