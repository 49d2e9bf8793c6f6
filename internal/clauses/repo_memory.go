package clauses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo. It reproduces the
// schema's cascade behavior exactly: deleting a clause drops its risks,
// while clauses survive until deleted explicitly.
type MemoryRepo struct {
	mu      sync.RWMutex
	clauses map[string]Clause // id -> clause
	risks   map[string]Risk   // id -> risk
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		clauses: make(map[string]Clause),
		risks:   make(map[string]Risk),
	}
}

// Create stores a new clause after validating it.
func (r *MemoryRepo) Create(ctx context.Context, clause Clause) (Clause, error) {
	if err := ctx.Err(); err != nil {
		return Clause{}, err
	}
	if err := clause.Validate(); err != nil {
		return Clause{}, err
	}
	if clause.ID == "" {
		clause.ID = uuid.NewString()
	}
	if clause.CreatedAt.IsZero() {
		clause.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clauses[clause.ID] = clause
	return clause, nil
}

// GetByID returns a clause by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, clauseID string) (Clause, error) {
	if err := ctx.Err(); err != nil {
		return Clause{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clause, ok := r.clauses[clauseID]
	if !ok {
		return Clause{}, ErrNotFound
	}
	return clause, nil
}

// ListByDocument returns a document's clauses in extraction order.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Clause, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Clause
	for _, clause := range r.clauses {
		if clause.DocumentID == documentID {
			out = append(out, clause)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartPos != nil && b.StartPos != nil && *a.StartPos != *b.StartPos {
			return *a.StartPos < *b.StartPos
		}
		if (a.StartPos != nil) != (b.StartPos != nil) {
			return a.StartPos != nil
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

// Delete removes the clause and all of its risks.
func (r *MemoryRepo) Delete(ctx context.Context, clauseID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clauses[clauseID]; !ok {
		return ErrNotFound
	}
	delete(r.clauses, clauseID)
	for id, risk := range r.risks {
		if risk.ClauseID == clauseID {
			delete(r.risks, id)
		}
	}
	return nil
}

// CreateRisk stores a new risk after validating it.
func (r *MemoryRepo) CreateRisk(ctx context.Context, risk Risk) (Risk, error) {
	if err := ctx.Err(); err != nil {
		return Risk{}, err
	}
	if err := risk.Validate(); err != nil {
		return Risk{}, err
	}
	if risk.ID == "" {
		risk.ID = uuid.NewString()
	}
	if risk.CreatedAt.IsZero() {
		risk.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.risks[risk.ID] = risk
	return risk, nil
}

// ListRisks returns a clause's risks, oldest first.
func (r *MemoryRepo) ListRisks(ctx context.Context, clauseID string) ([]Risk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Risk
	for _, risk := range r.risks {
		if risk.ClauseID == clauseID {
			out = append(out, risk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteRisk removes a single risk.
func (r *MemoryRepo) DeleteRisk(ctx context.Context, riskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.risks[riskID]; !ok {
		return ErrRiskNotFound
	}
	delete(r.risks, riskID)
	return nil
}

// DeleteByDocument removes a document's clauses and their risks. The live
// schema has no such cascade; this is the explicit cleanup the account
// routines rely on.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, clause := range r.clauses {
		if clause.DocumentID != documentID {
			continue
		}
		delete(r.clauses, id)
		for riskID, risk := range r.risks {
			if risk.ClauseID == id {
				delete(r.risks, riskID)
			}
		}
	}
	return nil
}
