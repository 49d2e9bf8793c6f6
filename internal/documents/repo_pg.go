package documents

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

const documentColumns = `
id, name, original_filename, file_path, file_size, mime_type,
status, text_content, metadata, user_id, created_at, updated_at`

// Create inserts a new document, defaulting the status to uploaded.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
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

	meta, err := marshalJSONMap(doc.Metadata)
	if err != nil {
		return Document{}, err
	}

	const query = `
INSERT INTO documents (
    id, name, original_filename, file_path, file_size, mime_type,
    status, text_content, metadata, user_id, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.OriginalFilename,
		doc.FilePath,
		doc.FileSize,
		doc.MimeType,
		string(doc.Status),
		nullableString(doc.TextContent),
		meta,
		doc.UserID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// GetByID returns a document by primary key.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update writes the full row back.
func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	meta, err := marshalJSONMap(doc.Metadata)
	if err != nil {
		return err
	}

	const query = `
UPDATE documents SET
  name = $2,
  original_filename = $3,
  file_path = $4,
  file_size = $5,
  mime_type = $6,
  status = $7,
  text_content = $8,
  metadata = $9,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.OriginalFilename,
		doc.FilePath,
		doc.FileSize,
		doc.MimeType,
		string(doc.Status),
		nullableString(doc.TextContent),
		meta,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateStatus writes the processing status. Transition validity is the
// service's responsibility; the schema still rejects values outside the
// closed set.
func (r *PGRepo) UpdateStatus(ctx context.Context, documentID string, status Status) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`,
		documentID, string(status))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateText stores the extracted text.
func (r *PGRepo) UpdateText(ctx context.Context, documentID, text string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET text_content = $2, updated_at = now() WHERE id = $1`,
		documentID, text)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the document. Analyses cascade away; clauses do not, so the
// delete fails with a FK violation while any clause still references it.
func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status string
	var textContent sql.NullString
	var meta []byte

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.OriginalFilename,
		&doc.FilePath,
		&doc.FileSize,
		&doc.MimeType,
		&status,
		&textContent,
		&meta,
		&doc.UserID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Status = Status(status)
	doc.TextContent = textContent.String
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &doc.Metadata); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
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
