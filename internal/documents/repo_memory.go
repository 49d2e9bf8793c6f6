package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo. The delete hooks mirror
// the schema's foreign keys: DeleteBlockers stand in for the clause FK, which
// carries no ON DELETE rule and blocks the delete while rows reference the
// document; DeleteCascades stand in for the analyses ON DELETE CASCADE.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // id -> document

	DeleteBlockers []func(ctx context.Context, documentID string) (bool, error)
	DeleteCascades []func(ctx context.Context, documentID string) error
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = StatusUploaded
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return doc, nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var docs []Document
	for _, doc := range r.data {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Update replaces the stored row.
func (r *MemoryRepo) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[doc.ID]
	if !ok {
		return ErrNotFound
	}
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC()
	r.data[doc.ID] = doc
	return nil
}

// UpdateStatus writes the processing status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, documentID string, status Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	r.data[documentID] = doc
	return nil
}

// UpdateText stores the extracted text.
func (r *MemoryRepo) UpdateText(ctx context.Context, documentID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.TextContent = text
	doc.UpdatedAt = time.Now().UTC()
	r.data[documentID] = doc
	return nil
}

// Delete removes the document, failing while any blocker still references it
// and cascading dependent rows afterwards.
func (r *MemoryRepo) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, blocked := range r.DeleteBlockers {
		referenced, err := blocked(ctx, documentID)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("document %s is still referenced by clauses", documentID)
		}
	}

	r.mu.Lock()
	if _, ok := r.data[documentID]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.data, documentID)
	r.mu.Unlock()

	for _, cascade := range r.DeleteCascades {
		if err := cascade(ctx, documentID); err != nil {
			return err
		}
	}
	return nil
}
