package clauses

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "clause not found" }

var ErrRiskNotFound = errRiskNotFound{}

type errRiskNotFound struct{}

func (errRiskNotFound) Error() string { return "clause risk not found" }

// Repo defines persistence operations for clauses and their risks. Risks
// cascade away with their clause; clauses do NOT cascade away with their
// document, document-level cleanup is the account package's job.
type Repo interface {
	Create(ctx context.Context, clause Clause) (Clause, error)
	GetByID(ctx context.Context, clauseID string) (Clause, error)
	ListByDocument(ctx context.Context, documentID string) ([]Clause, error)
	Delete(ctx context.Context, clauseID string) error

	CreateRisk(ctx context.Context, risk Risk) (Risk, error)
	ListRisks(ctx context.Context, clauseID string) ([]Risk, error)
	DeleteRisk(ctx context.Context, riskID string) error
}
