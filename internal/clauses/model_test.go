package clauses

import (
	"errors"
	"testing"

	"contractai-backend/internal/shared/apperrors"
)

func intp(v int) *int { return &v }

func TestSeverityOrdering(t *testing.T) {
	ordered := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityNegligible}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].MoreSevere(ordered[i+1]) {
			t.Fatalf("%s should outrank %s", ordered[i], ordered[i+1])
		}
	}
	if Severity("bogus").Rank() != -1 {
		t.Fatalf("unknown severity should rank below negligible")
	}
}

func TestParseSeverityRejectsUnknown(t *testing.T) {
	if _, err := ParseSeverity("high"); err != nil {
		t.Fatalf("ParseSeverity(high): %v", err)
	}
	_, err := ParseSeverity("catastrophic")
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClauseValidateConfidenceRange(t *testing.T) {
	base := Clause{DocumentID: "doc-1", ClauseType: "indemnity", Text: "The supplier shall indemnify..."}

	cases := []struct {
		name       string
		confidence *int
		ok         bool
	}{
		{"absent", nil, true},
		{"zero", intp(0), true},
		{"hundred", intp(100), true},
		{"negative", intp(-1), false},
		{"over", intp(101), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clause := base
			clause.Confidence = tc.confidence
			err := clause.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok {
				var appErr *apperrors.Error
				if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindValidation {
					t.Fatalf("expected validation error, got %v", err)
				}
			}
		})
	}
}

func TestRiskValidate(t *testing.T) {
	risk := Risk{ClauseID: "cl-1", RiskType: "liability", Description: "Uncapped liability", Severity: SeverityHigh}
	if err := risk.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	risk.Severity = "huge"
	if err := risk.Validate(); err == nil {
		t.Fatal("expected error for unknown severity")
	}
	risk.Severity = SeverityHigh
	risk.Description = ""
	if err := risk.Validate(); err == nil {
		t.Fatal("expected error for missing description")
	}
}
