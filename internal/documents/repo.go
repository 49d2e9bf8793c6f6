package documents

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "document not found" }

// Repo defines persistence operations for documents. Deleting a document
// cascades to its analyses at the schema level; its clauses are left in place
// (legacy behavior, see the schema migration) and fail the delete while any
// exist.
type Repo interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	Update(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, documentID string, status Status) error
	UpdateText(ctx context.Context, documentID, text string) error
	Delete(ctx context.Context, documentID string) error
}
