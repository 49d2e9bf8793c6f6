package analyses

import "time"

// StatusPending is the initial analysis status. Unlike document statuses the
// analysis status is a free-form short string set by the pipeline.
const StatusPending = "pending"

// Analysis is one derived artifact of a document: the JSON payload an
// external analysis pipeline produced for a given analysis type.
type Analysis struct {
	ID           string         `json:"id"`
	DocumentID   string         `json:"document_id"`
	AnalysisType string         `json:"analysis_type"`
	Status       string         `json:"status"`
	Result       map[string]any `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
