package documents

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryDeleteBlockedWhileReferenced(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := t.Context()

	referenced := true
	repo.DeleteBlockers = append(repo.DeleteBlockers, func(ctx context.Context, documentID string) (bool, error) {
		return referenced, nil
	})

	doc, err := repo.Create(ctx, Document{Name: "nda.pdf", OriginalFilename: "nda.pdf", UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, doc.ID); err == nil {
		t.Fatalf("delete should fail while a blocker reports references")
	}
	if _, err := repo.GetByID(ctx, doc.ID); err != nil {
		t.Fatalf("document should survive a blocked delete: %v", err)
	}

	referenced = false
	if err := repo.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("delete after references cleared: %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("document should be gone, got %v", err)
	}
}

func TestMemoryDeleteRunsCascades(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := t.Context()

	var cascaded []string
	repo.DeleteCascades = append(repo.DeleteCascades, func(ctx context.Context, documentID string) error {
		cascaded = append(cascaded, documentID)
		return nil
	})

	doc, err := repo.Create(ctx, Document{Name: "msa.pdf", OriginalFilename: "msa.pdf", UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cascaded) != 1 || cascaded[0] != doc.ID {
		t.Fatalf("cascades = %v, want [%s]", cascaded, doc.ID)
	}
}
