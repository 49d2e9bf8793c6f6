package clauses

import (
	"testing"
)

func TestMemoryRepoDeleteClauseDropsRisks(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := t.Context()

	clause, err := repo.Create(ctx, Clause{DocumentID: "doc-1", ClauseType: "indemnity", Text: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, severity := range []Severity{SeverityHigh, SeverityLow} {
		if _, err := repo.CreateRisk(ctx, Risk{
			ClauseID:    clause.ID,
			RiskType:    "liability",
			Description: "d",
			Severity:    severity,
		}); err != nil {
			t.Fatalf("CreateRisk: %v", err)
		}
	}

	if err := repo.Delete(ctx, clause.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	risks, err := repo.ListRisks(ctx, clause.ID)
	if err != nil {
		t.Fatalf("ListRisks: %v", err)
	}
	if len(risks) != 0 {
		t.Fatalf("risks survived their clause: %v", risks)
	}
}

func TestMemoryRepoListByDocumentOrdering(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := t.Context()

	// Insert out of order; listing sorts by start position, nils last.
	for _, c := range []Clause{
		{DocumentID: "doc-1", ClauseType: "c", Text: "third"},
		{DocumentID: "doc-1", ClauseType: "b", Text: "second", StartPos: intp(200)},
		{DocumentID: "doc-1", ClauseType: "a", Text: "first", StartPos: intp(10)},
	} {
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	out, err := repo.ListByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	var got []string
	for _, c := range out {
		got = append(got, c.Text)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
