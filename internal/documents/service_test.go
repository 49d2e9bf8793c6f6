package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"testing"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/telemetry"
)

// stubStore keeps objects in a map and can be forced to fail reads.
type stubStore struct {
	objects map[string][]byte
	openErr error
}

func newStubStore() *stubStore {
	return &stubStore{objects: make(map[string][]byte)}
}

func (s *stubStore) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := path.Join(userId, fileName)
	s.objects[key] = data
	return key, int64(len(data)), "text/plain; charset=utf-8", nil
}

func (s *stubStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found: " + storageKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubStore) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.objects[storageKey] = data
	return int64(len(data)), nil
}

func newExtractService(t *testing.T) (*Service, *MemoryRepo, *stubStore) {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))
	repo := NewMemoryRepo()
	store := newStubStore()
	return &Service{Store: store, Repo: repo}, repo, store
}

func TestExtractTextMarksProcessedAndStoresText(t *testing.T) {
	svc, repo, store := newExtractService(t)
	ctx := t.Context()

	store.objects["u-1/nda.txt"] = []byte("The receiving party shall not disclose.")
	doc, err := repo.Create(ctx, Document{
		Name: "nda.txt", OriginalFilename: "nda.txt", FilePath: "u-1/nda.txt",
		MimeType: "text/plain", Status: StatusUploaded, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	if err := svc.ExtractText(ctx, doc.ID); err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusProcessed {
		t.Fatalf("status = %q, want %q", got.Status, StatusProcessed)
	}
	if got.TextContent != "The receiving party shall not disclose." {
		t.Fatalf("text content = %q", got.TextContent)
	}
	if _, ok := store.objects["u-1/nda.txt.extracted.txt"]; !ok {
		t.Fatalf("derived text object missing")
	}
}

func TestExtractTextFailureWalksProcessingToFailed(t *testing.T) {
	svc, repo, store := newExtractService(t)
	ctx := t.Context()

	store.openErr = errors.New("object store down")
	doc, err := repo.Create(ctx, Document{
		Name: "msa.pdf", OriginalFilename: "msa.pdf", FilePath: "u-1/msa.pdf",
		MimeType: "application/pdf", Status: StatusUploaded, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	err = svc.ExtractText(ctx, doc.ID)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindDocumentProcessing {
		t.Fatalf("expected document processing error, got %v", err)
	}

	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", got.Status, StatusFailed)
	}
}

func TestExtractTextRequiresUploadedStatus(t *testing.T) {
	svc, repo, store := newExtractService(t)
	ctx := t.Context()

	store.objects["u-1/done.txt"] = []byte("already processed")
	doc, err := repo.Create(ctx, Document{
		Name: "done.txt", OriginalFilename: "done.txt", FilePath: "u-1/done.txt",
		MimeType: "text/plain", Status: StatusProcessed, UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	err = svc.ExtractText(ctx, doc.ID)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusProcessed {
		t.Fatalf("status = %q, want it untouched", got.Status)
	}
}
