package domain

import "time"

// QuestionType is the closed set of recognized question categories.
// Anything outside this set coming back from the generative service is
// stored as absent, never as a free-form string.
type QuestionType string

const (
	TypeDescriptive    QuestionType = "Descriptive"
	TypeMultipleChoice QuestionType = "Multiple Choice"
	TypeTrueFalse      QuestionType = "True/False"
	TypeFillInBlank    QuestionType = "Fill in the blank"
	TypeShortAnswer    QuestionType = "Short Answer"
	TypeComprehension  QuestionType = "Comprehension"
)

// Difficulty is the closed set of recognized difficulty labels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ValidQuestionType reports whether v is a member of the question type enum.
func ValidQuestionType(v string) bool {
	switch QuestionType(v) {
	case TypeDescriptive, TypeMultipleChoice, TypeTrueFalse,
		TypeFillInBlank, TypeShortAnswer, TypeComprehension:
		return true
	}
	return false
}

// ValidDifficulty reports whether v is a member of the difficulty enum.
func ValidDifficulty(v string) bool {
	switch Difficulty(v) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Candidate is one untrusted record proposed by the generative service for a
// page. No shape is guaranteed; the sanitizer owns all field access.
type Candidate map[string]any

// ExtractedPage is one page of layout-service output. Page numbers are
// 1-based as reported by the service and are not necessarily contiguous.
type ExtractedPage struct {
	Number int
	Text   string
}

// LayoutResult is the normalized output of document layout analysis.
type LayoutResult struct {
	PageCount int
	Languages []string
	Pages     []ExtractedPage
}

// Question is a sanitized, persistable exam question. Once stored it is
// never mutated by the extraction pipeline.
type Question struct {
	ID                 string    `db:"id" json:"id"`
	FileName           string    `db:"file_name" json:"file_name"`
	SubjectName        string    `db:"subject_name" json:"subject_name"`
	LessonTitle        string    `db:"lesson_title" json:"lesson_title"`
	ClassName          *string   `db:"class_name" json:"class_name,omitempty"`
	Specialization     *string   `db:"specialization" json:"specialization,omitempty"`
	Question           string    `db:"question" json:"question"`
	QuestionType       *string   `db:"question_type" json:"question_type,omitempty"`
	QuestionDifficulty *string   `db:"question_difficulty" json:"question_difficulty,omitempty"`
	PageNumber         *string   `db:"page_number" json:"page_number,omitempty"`
	Option1            *string   `db:"option1" json:"option1,omitempty"`
	Option2            *string   `db:"option2" json:"option2,omitempty"`
	Option3            *string   `db:"option3" json:"option3,omitempty"`
	Option4            *string   `db:"option4" json:"option4,omitempty"`
	Option5            *string   `db:"option5" json:"option5,omitempty"`
	Option6            *string   `db:"option6" json:"option6,omitempty"`
	AnswerSteps        *string   `db:"answer_steps" json:"answer_steps,omitempty"`
	CorrectAnswer      *string   `db:"correct_answer" json:"correct_answer,omitempty"`
	UploadedBy         string    `db:"uploaded_by" json:"uploaded_by"`
	UpdatedBy          *string   `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// ExtractionRequest carries the resolved request-level metadata for one run.
// UploadedBy has already been resolved through form value → metadata blob →
// configured default by the time validation sees it.
type ExtractionRequest struct {
	FileName       string `validate:"required"`
	SubjectName    string `validate:"required"`
	ClassName      string
	Specialization string
	UploadedBy     string `validate:"required"`
	UpdatedBy      string
}

// PageContext is the per-page sanitization context: request metadata plus
// the page number the batch belongs to.
type PageContext struct {
	Request    ExtractionRequest
	PageNumber int
}

// Per-page outcome tags, surfaced verbatim in the run summary.
const (
	PageProcessed            = "processed"
	PageProcessedNoQuestions = "processed_no_questions"
	PageSkippedEmptyContent  = "skipped_empty_content"
	PageFailed               = "failed"
)

// PageSummary is the response-only record of one page's outcome.
type PageSummary struct {
	PageNumber         int    `json:"page_number"`
	QuestionsExtracted int    `json:"questions_extracted"`
	Status             string `json:"status"`
	Error              string `json:"error,omitempty"`
}

// RunSummary aggregates one end-to-end extraction run.
// Invariant: PagesSkipped + PagesWithContent == TotalPagesDetected once a
// run completes (failed runs stop counting at the failing page).
type RunSummary struct {
	TotalPagesDetected int           `json:"total_pages_detected"`
	PagesWithContent   int           `json:"pages_with_content"`
	PagesSkipped       int           `json:"pages_skipped"`
	QuestionsStored    int           `json:"questions_stored"`
	Pages              []PageSummary `json:"pages"`
}
