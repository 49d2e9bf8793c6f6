package analyses

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAnalysisJSONRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	in := Analysis{
		ID:           "an-1",
		DocumentID:   "doc-1",
		AnalysisType: "risk_assessment",
		Status:       "completed",
		Result:       map[string]any{"score": float64(82)},
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"created_at":"2026-03-14T09:26:53Z"`) {
		t.Fatalf("timestamps not ISO-8601: %s", data)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Fatalf("empty error should be omitted: %s", data)
	}

	var out Analysis
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Result["score"] != float64(82) {
		t.Fatalf("result lost: %v", out.Result)
	}
	if !out.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v", out.CreatedAt)
	}
}

func TestMemoryRepoDeleteByDocument(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := t.Context()

	for _, docID := range []string{"doc-1", "doc-1", "doc-2"} {
		if _, err := repo.Create(ctx, Analysis{DocumentID: docID, AnalysisType: "summary"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.DeleteByDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}
	gone, err := repo.ListByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("doc-1 analyses survived: %v", gone)
	}
	kept, err := repo.ListByDocument(ctx, "doc-2")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("doc-2 analyses = %d", len(kept))
	}
}
