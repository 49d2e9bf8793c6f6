package analyses

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

const analysisColumns = `
id, document_id, analysis_type, status, result, error, created_at, updated_at`

// Create inserts a new analysis, defaulting the status to pending.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) (Analysis, error) {
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

	result, err := marshalJSONMap(analysis.Result)
	if err != nil {
		return Analysis{}, err
	}

	const query = `
INSERT INTO document_analyses (
    id, document_id, analysis_type, status, result, error, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.DocumentID,
		analysis.AnalysisType,
		analysis.Status,
		result,
		nullableString(analysis.Error),
		analysis.CreatedAt,
		analysis.UpdatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

// GetByID returns an analysis by primary key.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM document_analyses WHERE id = $1 LIMIT 1`
	analysis, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return analysis, nil
}

// ListByDocument returns all analyses of a document, newest first.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM document_analyses WHERE document_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, analysis)
	}
	return out, rows.Err()
}

// Complete stores the result payload and marks the analysis completed.
func (r *PGRepo) Complete(ctx context.Context, analysisID string, result map[string]any) error {
	payload, err := marshalJSONMap(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE document_analyses SET status = 'completed', result = $2, error = NULL, updated_at = now() WHERE id = $1`,
		analysisID, payload)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Fail records the failure message.
func (r *PGRepo) Fail(ctx context.Context, analysisID, errMsg string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE document_analyses SET status = 'failed', error = $2, updated_at = now() WHERE id = $1`,
		analysisID, errMsg)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the analysis.
func (r *PGRepo) Delete(ctx context.Context, analysisID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM document_analyses WHERE id = $1`, analysisID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var analysis Analysis
	var result []byte
	var errMsg sql.NullString

	err := row.Scan(
		&analysis.ID,
		&analysis.DocumentID,
		&analysis.AnalysisType,
		&analysis.Status,
		&result,
		&errMsg,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	analysis.Error = errMsg.String
	if len(result) > 0 {
		if err := json.Unmarshal(result, &analysis.Result); err != nil {
			return Analysis{}, err
		}
	}
	return analysis, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
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
