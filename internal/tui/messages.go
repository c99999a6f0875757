package tui

import "github.com/statementkit/colgrid/internal/model"

// pageImageMsg reports the page image load used to seed the coordinate
// transform. Until it arrives the grid overlay is inert.
type pageImageMsg struct {
	err error
}

// previewMsg carries a parse-preview result. Stale responses are filtered
// out before this message is ever produced.
type previewMsg struct {
	result *model.ParseResult
	err    error
}

// confirmMsg carries the outcome of a confirm-mapping call.
type confirmMsg struct {
	result *model.ConfirmResult
	err    error
}
