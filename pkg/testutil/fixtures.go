package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
)

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

func (f *FixtureFactory) next() int {
	f.sequence++
	return f.sequence
}

// Question returns a persistable question with unique, valid defaults.
// Override fields on the returned value as needed.
func (f *FixtureFactory) Question() *domain.Question {
	n := f.next()
	now := time.Now().UTC()
	page := "1"
	return &domain.Question{
		ID:          uuid.New().String(),
		FileName:    fmt.Sprintf("fixture-%d.pdf", n),
		SubjectName: "Physics",
		LessonTitle: "Kinematics",
		Question:    fmt.Sprintf("Sample question %d?", n),
		PageNumber:  &page,
		UploadedBy:  "fixtures@test.local",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// QuestionBatch returns n questions sharing one file name, the shape of a
// single page batch.
func (f *FixtureFactory) QuestionBatch(fileName string, n int) []*domain.Question {
	batch := make([]*domain.Question, 0, n)
	for i := 0; i < n; i++ {
		q := f.Question()
		q.FileName = fileName
		batch = append(batch, q)
	}
	return batch
}

// ExtractionRequest returns a valid resolved request.
func (f *FixtureFactory) ExtractionRequest() domain.ExtractionRequest {
	return domain.ExtractionRequest{
		FileName:    fmt.Sprintf("fixture-%d.pdf", f.next()),
		SubjectName: "Physics",
		UploadedBy:  "fixtures@test.local",
	}
}

// Candidate returns a well-formed generative candidate.
func (f *FixtureFactory) Candidate() domain.Candidate {
	return domain.Candidate{
		"question":            fmt.Sprintf("Sample question %d?", f.next()),
		"question_type":       "Short Answer",
		"question_difficulty": "Medium",
	}
}
