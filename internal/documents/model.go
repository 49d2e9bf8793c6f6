package documents

import (
	"fmt"
	"time"
)

// Status is the document processing state. The set is closed; transitions go
// uploaded -> processing -> processed | failed.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusUploaded, StatusProcessing, StatusProcessed, StatusFailed:
		return Status(raw), nil
	}
	return "", fmt.Errorf("invalid document status %q", raw)
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusUploaded:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessed || next == StatusFailed
	}
	return false
}

// Document is an uploaded contract file owned by a user.
type Document struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	OriginalFilename string         `json:"original_filename"`
	FilePath         string         `json:"file_path"`
	FileSize         int64          `json:"file_size"`
	MimeType         string         `json:"mime_type"`
	Status           Status         `json:"status"`
	TextContent      string         `json:"text_content,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	UserID           string         `json:"user_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
