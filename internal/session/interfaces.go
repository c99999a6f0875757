package session

import (
	"context"

	"github.com/statementkit/colgrid/internal/model"
)

// ParserClient is the slice of the backend the editor session depends on.
type ParserClient interface {
	PageImage(ctx context.Context, filePath string, page int) ([]byte, error)
	ParsePreview(ctx context.Context, filePath string, mapping map[string]model.ColumnType, bounds []model.ColumnBound) (*model.ParseResult, error)
	ConfirmMapping(ctx context.Context, sub model.Submission) (*model.ConfirmResult, error)
}

// TemplateSaver persists a confirmed mapping for later reuse.
type TemplateSaver interface {
	SaveTemplate(ctx context.Context, t model.Template) error
}
