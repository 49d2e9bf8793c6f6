package documents

import (
	"context"
	"errors"
	"fmt"
	"io"

	"contractai-backend/internal/extract"
	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/storage/object"
	"contractai-backend/internal/shared/telemetry"
)

// Service coordinates document storage and lifecycle.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload persists the file to object storage and records the document row
// with status uploaded.
func (s *Service) Upload(ctx context.Context, userID, name, originalFilename string, body io.Reader) (Document, error) {
	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, originalFilename, body)
	if err != nil {
		return Document{}, apperrors.Storage(
			"failed to store uploaded file",
			map[string]any{"filename": originalFilename, "cause": err.Error()},
		)
	}

	doc, err := s.Repo.Create(ctx, Document{
		Name:             name,
		OriginalFilename: originalFilename,
		FilePath:         storageKey,
		FileSize:         size,
		MimeType:         mimeType,
		Status:           StatusUploaded,
		UserID:           userID,
	})
	if err != nil {
		return Document{}, apperrors.Database(
			"failed to record document",
			map[string]any{"filename": originalFilename, "cause": err.Error()},
		)
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"user_id":     userID,
		"size":        size,
		"mime_type":   mimeType,
	})
	return doc, nil
}

// Get returns a document or a NotFoundError.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, apperrors.NotFound(
				"document not found",
				map[string]any{"document_id": documentID},
			)
		}
		return Document{}, apperrors.Database("failed to load document", map[string]any{"cause": err.Error()})
	}
	return doc, nil
}

// Transition moves the document to the next processing status, enforcing the
// closed transition graph.
func (s *Service) Transition(ctx context.Context, documentID string, next Status) error {
	if _, err := ParseStatus(string(next)); err != nil {
		return apperrors.Validation(err.Error(), map[string]any{"status": string(next)})
	}

	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if !doc.Status.CanTransition(next) {
		return apperrors.Validation(
			fmt.Sprintf("cannot transition document from %s to %s", doc.Status, next),
			map[string]any{"document_id": documentID, "from": string(doc.Status), "to": string(next)},
		)
	}

	if err := s.Repo.UpdateStatus(ctx, documentID, next); err != nil {
		return apperrors.Database("failed to update document status", map[string]any{"cause": err.Error()})
	}
	return nil
}

// ExtractText pulls plain text out of the stored file and saves it on the
// document. The document walks the full status graph: processing while the
// extraction runs, then processed or failed. Only uploaded documents are
// eligible; anything else fails the processing transition.
func (s *Service) ExtractText(ctx context.Context, documentID string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.Transition(ctx, documentID, StatusProcessing); err != nil {
		return err
	}

	text, err := extract.Text(ctx, s.Store, doc.FilePath, doc.MimeType, doc.OriginalFilename)
	if err != nil {
		s.markFailed(ctx, documentID)
		return apperrors.DocumentProcessing(
			"text extraction failed",
			map[string]any{"document_id": documentID, "cause": err.Error()},
		)
	}

	if err := s.Repo.UpdateText(ctx, documentID, text); err != nil {
		s.markFailed(ctx, documentID)
		return apperrors.Database("failed to store extracted text", map[string]any{"cause": err.Error()})
	}
	return s.Transition(ctx, documentID, StatusProcessed)
}

func (s *Service) markFailed(ctx context.Context, documentID string) {
	if err := s.Transition(ctx, documentID, StatusFailed); err != nil {
		telemetry.Warn("document.mark_failed", map[string]any{"document_id": documentID, "cause": err.Error()})
	}
}
