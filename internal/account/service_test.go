package account

import (
	"context"
	"errors"
	"testing"

	"contractai-backend/internal/analyses"
	"contractai-backend/internal/clauses"
	"contractai-backend/internal/documents"
	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/users"
)

func newTestService(t *testing.T) (*Service, *users.MemoryRepo, *documents.MemoryRepo, *analyses.MemoryRepo, *clauses.MemoryRepo) {
	t.Helper()
	userRepo := users.NewMemoryRepo()
	docRepo := documents.NewMemoryRepo()
	analysisRepo := analyses.NewMemoryRepo()
	clauseRepo := clauses.NewMemoryRepo()
	docRepo.DeleteBlockers = append(docRepo.DeleteBlockers, func(ctx context.Context, documentID string) (bool, error) {
		existing, err := clauseRepo.ListByDocument(ctx, documentID)
		return len(existing) > 0, err
	})
	docRepo.DeleteCascades = append(docRepo.DeleteCascades, analysisRepo.DeleteByDocument)
	return NewService(userRepo, docRepo, analysisRepo, clauseRepo, nil), userRepo, docRepo, analysisRepo, clauseRepo
}

func TestDeleteUserRemovesDocumentsAndAnalyses(t *testing.T) {
	svc, userRepo, docRepo, analysisRepo, clauseRepo := newTestService(t)
	ctx := t.Context()

	user, err := userRepo.Create(ctx, users.User{Email: "owner@example.com", HashedPassword: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	doc, err := docRepo.Create(ctx, documents.Document{
		Name: "msa.pdf", OriginalFilename: "msa.pdf", FilePath: "u/msa.pdf",
		FileSize: 10, MimeType: "application/pdf", UserID: user.ID,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := analysisRepo.Create(ctx, analyses.Analysis{DocumentID: doc.ID, AnalysisType: "summary"}); err != nil {
		t.Fatalf("create analysis: %v", err)
	}
	clause, err := clauseRepo.Create(ctx, clauses.Clause{DocumentID: doc.ID, ClauseType: "indemnity", Text: "x"})
	if err != nil {
		t.Fatalf("create clause: %v", err)
	}
	if _, err := clauseRepo.CreateRisk(ctx, clauses.Risk{
		ClauseID: clause.ID, RiskType: "liability", Description: "d", Severity: clauses.SeverityHigh,
	}); err != nil {
		t.Fatalf("create risk: %v", err)
	}

	result, err := svc.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if result.Documents != 1 || result.Clauses != 1 {
		t.Fatalf("result = %+v", result)
	}

	if _, err := userRepo.GetByID(ctx, user.ID); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("user survived: %v", err)
	}
	if _, err := docRepo.GetByID(ctx, doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("document survived: %v", err)
	}
	remaining, err := analysisRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list analyses: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("analyses survived: %v", remaining)
	}
	risks, err := clauseRepo.ListRisks(ctx, clause.ID)
	if err != nil {
		t.Fatalf("list risks: %v", err)
	}
	if len(risks) != 0 {
		t.Fatalf("risks survived: %v", risks)
	}
}

// A plain repo-level document delete never removes clauses: the clause FK
// carries no cascade, so the delete is blocked while clauses exist. Only the
// explicit DeleteDocument routine clears them first.
func TestBareDocumentDeleteBlockedByClauses(t *testing.T) {
	_, _, docRepo, _, clauseRepo := newTestService(t)
	ctx := t.Context()

	doc, err := docRepo.Create(ctx, documents.Document{
		Name: "nda.pdf", OriginalFilename: "nda.pdf", FilePath: "u/nda.pdf",
		FileSize: 10, MimeType: "application/pdf", UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := clauseRepo.Create(ctx, clauses.Clause{DocumentID: doc.ID, ClauseType: "notice", Text: "x"}); err != nil {
		t.Fatalf("create clause: %v", err)
	}

	if err := docRepo.Delete(ctx, doc.ID); err == nil {
		t.Fatalf("bare delete should fail while clauses reference the document")
	}

	if _, err := docRepo.GetByID(ctx, doc.ID); err != nil {
		t.Fatalf("document should survive the blocked delete: %v", err)
	}
	orphans, err := clauseRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list clauses: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("clauses should survive a bare document delete, got %d", len(orphans))
	}
}

func TestDeleteDocumentRemovesClausesAndRisks(t *testing.T) {
	svc, _, docRepo, analysisRepo, clauseRepo := newTestService(t)
	ctx := t.Context()

	doc, err := docRepo.Create(ctx, documents.Document{
		Name: "saas.pdf", OriginalFilename: "saas.pdf", FilePath: "u/saas.pdf",
		FileSize: 10, MimeType: "application/pdf", UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := analysisRepo.Create(ctx, analyses.Analysis{DocumentID: doc.ID, AnalysisType: "risk_assessment"}); err != nil {
		t.Fatalf("create analysis: %v", err)
	}
	clause, err := clauseRepo.Create(ctx, clauses.Clause{DocumentID: doc.ID, ClauseType: "liability", Text: "x"})
	if err != nil {
		t.Fatalf("create clause: %v", err)
	}
	if _, err := clauseRepo.CreateRisk(ctx, clauses.Risk{
		ClauseID: clause.ID, RiskType: "cap", Description: "d", Severity: clauses.SeverityCritical,
	}); err != nil {
		t.Fatalf("create risk: %v", err)
	}

	result, err := svc.DeleteDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if result.Documents != 1 || result.Clauses != 1 {
		t.Fatalf("result = %+v", result)
	}

	if _, err := docRepo.GetByID(ctx, doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("document survived: %v", err)
	}
	left, err := clauseRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list clauses: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("clauses survived: %v", left)
	}
	risks, err := clauseRepo.ListRisks(ctx, clause.ID)
	if err != nil {
		t.Fatalf("list risks: %v", err)
	}
	if len(risks) != 0 {
		t.Fatalf("risks survived: %v", risks)
	}
}

func TestRequireDocumentOwner(t *testing.T) {
	svc, _, docRepo, _, _ := newTestService(t)
	ctx := t.Context()

	doc, err := docRepo.Create(ctx, documents.Document{
		Name: "msa.pdf", OriginalFilename: "msa.pdf", FilePath: "u/msa.pdf",
		FileSize: 10, MimeType: "application/pdf", UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	if _, err := svc.RequireDocumentOwner(ctx, doc.ID, "user-1"); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}

	_, err = svc.RequireDocumentOwner(ctx, doc.ID, "user-2")
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}

	_, err = svc.RequireDocumentOwner(ctx, "missing", "user-1")
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
