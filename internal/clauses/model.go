package clauses

import (
	"fmt"
	"time"

	"contractai-backend/internal/shared/apperrors"
)

// Severity grades a clause risk. Levels are ordered, critical being the
// most urgent.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityHigh       Severity = "high"
	SeverityMedium     Severity = "medium"
	SeverityLow        Severity = "low"
	SeverityNegligible Severity = "negligible"
)

var severityRank = map[Severity]int{
	SeverityCritical:   4,
	SeverityHigh:       3,
	SeverityMedium:     2,
	SeverityLow:        1,
	SeverityNegligible: 0,
}

// ParseSeverity validates a severity string.
func ParseSeverity(raw string) (Severity, error) {
	severity := Severity(raw)
	if _, ok := severityRank[severity]; !ok {
		return "", apperrors.Validation(fmt.Sprintf("unknown severity %q", raw), map[string]any{
			"severity": raw,
		})
	}
	return severity, nil
}

// Rank returns the ordering position of a severity, higher meaning more
// severe. Unknown severities rank below negligible.
func (s Severity) Rank() int {
	rank, ok := severityRank[s]
	if !ok {
		return -1
	}
	return rank
}

// MoreSevere reports whether s outranks other.
func (s Severity) MoreSevere(other Severity) bool {
	return s.Rank() > other.Rank()
}

// Clause is one extracted contract clause. Risks hang off the clause and
// are removed with it; the parent document does not remove its clauses on
// deletion, that cleanup is an explicit account operation.
type Clause struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	ClauseType string         `json:"clause_type"`
	Text       string         `json:"text"`
	StartPos   *int           `json:"start_pos,omitempty"`
	EndPos     *int           `json:"end_pos,omitempty"`
	Confidence *int           `json:"confidence,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Validate checks the invariants not covered by the schema. Confidence is
// a percentage and the column carries no range constraint.
func (c Clause) Validate() error {
	if c.ClauseType == "" {
		return apperrors.Validation("clause_type is required", nil)
	}
	if c.Text == "" {
		return apperrors.Validation("clause text is required", nil)
	}
	if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 100) {
		return apperrors.Validation("confidence must be between 0 and 100", map[string]any{
			"confidence": *c.Confidence,
		})
	}
	return nil
}

// Risk is one identified risk of a clause.
type Risk struct {
	ID          string         `json:"id"`
	ClauseID    string         `json:"clause_id"`
	RiskType    string         `json:"risk_type"`
	Description string         `json:"description"`
	Severity    Severity       `json:"severity"`
	Impact      string         `json:"impact,omitempty"`
	Mitigation  string         `json:"mitigation,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Validate checks the risk invariants.
func (r Risk) Validate() error {
	if r.RiskType == "" {
		return apperrors.Validation("risk_type is required", nil)
	}
	if r.Description == "" {
		return apperrors.Validation("risk description is required", nil)
	}
	if _, err := ParseSeverity(string(r.Severity)); err != nil {
		return err
	}
	return nil
}
