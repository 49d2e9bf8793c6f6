package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Analysis // id -> analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Analysis)}
}

// Create stores a new analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	if analysis.Status == "" {
		analysis.Status = StatusPending
	}
	now := time.Now().UTC()
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = now
	}
	if analysis.UpdatedAt.IsZero() {
		analysis.UpdatedAt = analysis.CreatedAt
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[analysis.ID] = analysis
	return analysis, nil
}

// GetByID returns an analysis by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.data[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListByDocument returns a document's analyses, newest first.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Analysis
	for _, analysis := range r.data {
		if analysis.DocumentID == documentID {
			out = append(out, analysis)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Complete stores the result payload and marks the analysis completed.
func (r *MemoryRepo) Complete(ctx context.Context, analysisID string, result map[string]any) error {
	return r.update(ctx, analysisID, func(a *Analysis) {
		a.Status = "completed"
		a.Result = result
		a.Error = ""
	})
}

// Fail records the failure message.
func (r *MemoryRepo) Fail(ctx context.Context, analysisID, errMsg string) error {
	return r.update(ctx, analysisID, func(a *Analysis) {
		a.Status = "failed"
		a.Error = errMsg
	})
}

// Delete removes the analysis.
func (r *MemoryRepo) Delete(ctx context.Context, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[analysisID]; !ok {
		return ErrNotFound
	}
	delete(r.data, analysisID)
	return nil
}

// DeleteByDocument removes all analyses of a document. The memory repo
// mirrors the schema's declared cascade here so cascade behavior is testable
// without Postgres.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, analysis := range r.data {
		if analysis.DocumentID == documentID {
			delete(r.data, id)
		}
	}
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, analysisID string, apply func(*Analysis)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	apply(&analysis)
	analysis.UpdatedAt = time.Now().UTC()
	r.data[analysisID] = analysis
	return nil
}
