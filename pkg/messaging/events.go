package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventRunCompleted = "extraction.run.completed"
	EventRunFailed    = "extraction.run.failed"
)

// Exchange names
const (
	ExchangeExtractionEvents = "extraction.events"
)

// Event is the base event structure
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

// RunCompletedEvent is published after a document has been fully processed.
type RunCompletedEvent struct {
	FileName       string `json:"file_name"`
	SubjectName    string `json:"subject_name"`
	UploadedBy     string `json:"uploaded_by"`
	PagesDetected  int    `json:"pages_detected"`
	PagesProcessed int    `json:"pages_processed"`
	QuestionsSaved int    `json:"questions_saved"`
}

// RunFailedEvent is published when a run terminates with an error.
type RunFailedEvent struct {
	FileName    string `json:"file_name"`
	SubjectName string `json:"subject_name"`
	UploadedBy  string `json:"uploaded_by"`
	PageNumber  int    `json:"page_number,omitempty"`
	Error       string `json:"error"`
}
