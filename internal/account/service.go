package account

import (
	"context"
	"database/sql"
	"errors"

	"contractai-backend/internal/analyses"
	"contractai-backend/internal/clauses"
	"contractai-backend/internal/documents"
	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/storage/db"
	"contractai-backend/internal/users"
)

// Service bundles the deletion routines that span entities. The schema
// cascades documents and analyses away with their user, but clauses carry
// no cascade from documents, so any parent deletion has to clear clauses
// first or the FK blocks it. These routines do that enumeration inside a
// single transaction when Postgres repos are wired.
type Service struct {
	UserRepo     users.Repo
	DocRepo      documents.Repo
	AnalysisRepo analyses.Repo
	ClauseRepo   clauses.Repo
	Sessions     *db.Provider
}

// DeleteResult reports what a deletion removed.
type DeleteResult struct {
	Documents int `json:"documents"`
	Clauses   int `json:"clauses"`
}

// NewService wires the per-entity repos plus the session provider. When
// sessions is nil (memory repos) deletions fall back to enumerating rows
// through the repo interfaces.
func NewService(userRepo users.Repo, docRepo documents.Repo, analysisRepo analyses.Repo, clauseRepo clauses.Repo, sessions *db.Provider) *Service {
	return &Service{UserRepo: userRepo, DocRepo: docRepo, AnalysisRepo: analysisRepo, ClauseRepo: clauseRepo, Sessions: sessions}
}

// DeleteUser removes a user and everything hanging off them. Documents and
// analyses go via the schema cascade; clauses and risks are cleared
// explicitly beforehand.
func (s *Service) DeleteUser(ctx context.Context, userID string) (DeleteResult, error) {
	if s.Sessions != nil {
		return s.deleteUserTx(ctx, userID)
	}
	return s.deleteUserEnumerated(ctx, userID)
}

// DeleteDocument removes a document together with its clauses, their risks
// and its analyses. This is the opt-in full cleanup; a bare repo Delete
// fails on the clause FK while clauses exist.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) (DeleteResult, error) {
	if s.Sessions != nil {
		return s.deleteDocumentTx(ctx, documentID)
	}
	return s.deleteDocumentEnumerated(ctx, documentID)
}

// RequireDocumentOwner verifies the document belongs to the user.
func (s *Service) RequireDocumentOwner(ctx context.Context, documentID, userID string) (documents.Document, error) {
	doc, err := s.DocRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return documents.Document{}, apperrors.NotFound("document not found", map[string]any{"document_id": documentID})
		}
		return documents.Document{}, apperrors.Database("failed to load document", map[string]any{"document_id": documentID})
	}
	if doc.UserID != userID {
		return documents.Document{}, apperrors.Authorization("document belongs to another user", map[string]any{"document_id": documentID})
	}
	return doc, nil
}

// deleteUserTx runs the whole cleanup on one scoped session: the provider
// enforces the acquire timeout and rolls back on any failure.
func (s *Service) deleteUserTx(ctx context.Context, userID string) (DeleteResult, error) {
	var result DeleteResult
	err := s.Sessions.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Risks cascade from clauses, so one statement clears both.
		clauseRes, err := tx.ExecContext(ctx,
			`DELETE FROM clauses WHERE document_id IN (SELECT id FROM documents WHERE user_id = $1)`, userID)
		if err != nil {
			return apperrors.Database("failed to delete clauses", map[string]any{"user_id": userID})
		}
		clauseCount, _ := clauseRes.RowsAffected()

		var docCount int64
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE user_id = $1`, userID).Scan(&docCount); err != nil {
			return apperrors.Database("failed to count documents", map[string]any{"user_id": userID})
		}

		userRes, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return apperrors.Database("failed to delete user", map[string]any{"user_id": userID})
		}
		if affected, _ := userRes.RowsAffected(); affected == 0 {
			return apperrors.NotFound("user not found", map[string]any{"user_id": userID})
		}

		result = DeleteResult{Documents: int(docCount), Clauses: int(clauseCount)}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}

func (s *Service) deleteDocumentTx(ctx context.Context, documentID string) (DeleteResult, error) {
	var result DeleteResult
	err := s.Sessions.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		clauseRes, err := tx.ExecContext(ctx, `DELETE FROM clauses WHERE document_id = $1`, documentID)
		if err != nil {
			return apperrors.Database("failed to delete clauses", map[string]any{"document_id": documentID})
		}
		clauseCount, _ := clauseRes.RowsAffected()

		docRes, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
		if err != nil {
			return apperrors.Database("failed to delete document", map[string]any{"document_id": documentID})
		}
		if affected, _ := docRes.RowsAffected(); affected == 0 {
			return apperrors.NotFound("document not found", map[string]any{"document_id": documentID})
		}

		result = DeleteResult{Documents: 1, Clauses: int(clauseCount)}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}

// documentCleaner is the optional clause/analysis bulk removal the memory
// repos implement; it stands in for the SQL cascade in tests.
type documentCleaner interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

func (s *Service) deleteUserEnumerated(ctx context.Context, userID string) (DeleteResult, error) {
	docs, err := s.DocRepo.ListByUser(ctx, userID)
	if err != nil {
		return DeleteResult{}, apperrors.Database("failed to list documents", map[string]any{"user_id": userID})
	}

	result := DeleteResult{}
	for _, doc := range docs {
		partial, err := s.deleteDocumentEnumerated(ctx, doc.ID)
		if err != nil {
			return DeleteResult{}, err
		}
		result.Documents += partial.Documents
		result.Clauses += partial.Clauses
	}

	if err := s.UserRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return DeleteResult{}, apperrors.NotFound("user not found", map[string]any{"user_id": userID})
		}
		return DeleteResult{}, apperrors.Database("failed to delete user", map[string]any{"user_id": userID})
	}
	return result, nil
}

func (s *Service) deleteDocumentEnumerated(ctx context.Context, documentID string) (DeleteResult, error) {
	docClauses, err := s.ClauseRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return DeleteResult{}, apperrors.Database("failed to list clauses", map[string]any{"document_id": documentID})
	}
	if cleaner, ok := s.ClauseRepo.(documentCleaner); ok {
		if err := cleaner.DeleteByDocument(ctx, documentID); err != nil {
			return DeleteResult{}, apperrors.Database("failed to delete clauses", map[string]any{"document_id": documentID})
		}
	} else {
		for _, clause := range docClauses {
			if err := s.ClauseRepo.Delete(ctx, clause.ID); err != nil {
				return DeleteResult{}, apperrors.Database("failed to delete clause", map[string]any{"clause_id": clause.ID})
			}
		}
	}

	if cleaner, ok := s.AnalysisRepo.(documentCleaner); ok {
		if err := cleaner.DeleteByDocument(ctx, documentID); err != nil {
			return DeleteResult{}, apperrors.Database("failed to delete analyses", map[string]any{"document_id": documentID})
		}
	}

	if err := s.DocRepo.Delete(ctx, documentID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return DeleteResult{}, apperrors.NotFound("document not found", map[string]any{"document_id": documentID})
		}
		return DeleteResult{}, apperrors.Database("failed to delete document", map[string]any{"document_id": documentID})
	}
	return DeleteResult{Documents: 1, Clauses: len(docClauses)}, nil
}
