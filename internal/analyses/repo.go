package analyses

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "analysis not found" }

// Repo defines persistence operations for document analyses. Rows cascade
// away with their parent document at the schema level.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) (Analysis, error)
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByDocument(ctx context.Context, documentID string) ([]Analysis, error)
	Complete(ctx context.Context, analysisID string, result map[string]any) error
	Fail(ctx context.Context, analysisID, errMsg string) error
	Delete(ctx context.Context, analysisID string) error
}
