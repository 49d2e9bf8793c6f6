package clauses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const clauseColumns = `
id, document_id, clause_type, text, start_pos, end_pos, confidence, metadata, created_at`

const riskColumns = `
id, clause_id, risk_type, description, severity, impact, mitigation, metadata, created_at`

// Create inserts a new clause after validating it.
func (r *PGRepo) Create(ctx context.Context, clause Clause) (Clause, error) {
	if err := clause.Validate(); err != nil {
		return Clause{}, err
	}
	if clause.ID == "" {
		clause.ID = uuid.NewString()
	}
	if clause.CreatedAt.IsZero() {
		clause.CreatedAt = time.Now().UTC()
	}

	metadata, err := marshalJSONMap(clause.Metadata)
	if err != nil {
		return Clause{}, err
	}

	const query = `
INSERT INTO clauses (
    id, document_id, clause_type, text, start_pos, end_pos, confidence, metadata, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.DB.ExecContext(ctx, query,
		clause.ID,
		clause.DocumentID,
		clause.ClauseType,
		clause.Text,
		nullableInt(clause.StartPos),
		nullableInt(clause.EndPos),
		nullableInt(clause.Confidence),
		metadata,
		clause.CreatedAt,
	)
	if err != nil {
		return Clause{}, err
	}
	return clause, nil
}

// GetByID returns a clause by primary key.
func (r *PGRepo) GetByID(ctx context.Context, clauseID string) (Clause, error) {
	query := `SELECT ` + clauseColumns + ` FROM clauses WHERE id = $1 LIMIT 1`
	clause, err := scanClause(r.DB.QueryRowContext(ctx, query, clauseID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Clause{}, ErrNotFound
		}
		return Clause{}, err
	}
	return clause, nil
}

// ListByDocument returns a document's clauses in extraction order.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Clause, error) {
	query := `SELECT ` + clauseColumns + ` FROM clauses WHERE document_id = $1 ORDER BY start_pos NULLS LAST, created_at`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Clause
	for rows.Next() {
		clause, err := scanClause(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, clause)
	}
	return out, rows.Err()
}

// Delete removes the clause. The schema drops its risks with it.
func (r *PGRepo) Delete(ctx context.Context, clauseID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clauses WHERE id = $1`, clauseID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

// CreateRisk inserts a new risk after validating it.
func (r *PGRepo) CreateRisk(ctx context.Context, risk Risk) (Risk, error) {
	if err := risk.Validate(); err != nil {
		return Risk{}, err
	}
	if risk.ID == "" {
		risk.ID = uuid.NewString()
	}
	if risk.CreatedAt.IsZero() {
		risk.CreatedAt = time.Now().UTC()
	}

	metadata, err := marshalJSONMap(risk.Metadata)
	if err != nil {
		return Risk{}, err
	}

	const query = `
INSERT INTO clause_risks (
    id, clause_id, risk_type, description, severity, impact, mitigation, metadata, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.DB.ExecContext(ctx, query,
		risk.ID,
		risk.ClauseID,
		risk.RiskType,
		risk.Description,
		string(risk.Severity),
		nullableString(risk.Impact),
		nullableString(risk.Mitigation),
		metadata,
		risk.CreatedAt,
	)
	if err != nil {
		return Risk{}, err
	}
	return risk, nil
}

// ListRisks returns a clause's risks.
func (r *PGRepo) ListRisks(ctx context.Context, clauseID string) ([]Risk, error) {
	query := `SELECT ` + riskColumns + ` FROM clause_risks WHERE clause_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, clauseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Risk
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, risk)
	}
	return out, rows.Err()
}

// DeleteRisk removes a single risk.
func (r *PGRepo) DeleteRisk(ctx context.Context, riskID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clause_risks WHERE id = $1`, riskID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrRiskNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClause(row rowScanner) (Clause, error) {
	var clause Clause
	var startPos, endPos, confidence sql.NullInt64
	var metadata []byte

	err := row.Scan(
		&clause.ID,
		&clause.DocumentID,
		&clause.ClauseType,
		&clause.Text,
		&startPos,
		&endPos,
		&confidence,
		&metadata,
		&clause.CreatedAt,
	)
	if err != nil {
		return Clause{}, err
	}
	clause.StartPos = intPointer(startPos)
	clause.EndPos = intPointer(endPos)
	clause.Confidence = intPointer(confidence)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &clause.Metadata); err != nil {
			return Clause{}, err
		}
	}
	return clause, nil
}

func scanRisk(row rowScanner) (Risk, error) {
	var risk Risk
	var impact, mitigation sql.NullString
	var metadata []byte

	err := row.Scan(
		&risk.ID,
		&risk.ClauseID,
		&risk.RiskType,
		&risk.Description,
		&risk.Severity,
		&impact,
		&mitigation,
		&metadata,
		&risk.CreatedAt,
	)
	if err != nil {
		return Risk{}, err
	}
	risk.Impact = impact.String
	risk.Mitigation = mitigation.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &risk.Metadata); err != nil {
			return Risk{}, err
		}
	}
	return risk, nil
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}
	return nil
}

func marshalJSONMap(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return int64(*value)
}

func intPointer(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	i := int(value.Int64)
	return &i
}
