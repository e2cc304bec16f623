package sanitize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/errors"
	"github.com/questbank/questbank-backend/pkg/logger"
)

// Sanitizer turns untrusted generative candidates into persistable questions.
// It never talks to the network or the database.
type Sanitizer struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Sanitizer {
	return &Sanitizer{log: log.WithComponent("sanitize")}
}

// Sanitize validates and normalizes one candidate within its page context.
// A missing or blank question text fails the candidate, which fails the whole
// page upstream. Out-of-enum type and difficulty values are dropped with a
// warning rather than failing the page.
func (s *Sanitizer) Sanitize(c domain.Candidate, pc domain.PageContext) (*domain.Question, error) {
	question := trimmed(c, "question")
	if question == "" {
		return nil, errors.DataShape("candidate has no question text")
	}

	lessonTitle := trimmed(c, "lesson_title")
	if lessonTitle == "" {
		lessonTitle = pc.Request.SubjectName
	}

	q := &domain.Question{
		FileName:       pc.Request.FileName,
		SubjectName:    pc.Request.SubjectName,
		LessonTitle:    lessonTitle,
		Question:       question,
		UploadedBy:     pc.Request.UploadedBy,
		ClassName:      optional(pc.Request.ClassName),
		Specialization: optional(pc.Request.Specialization),
		UpdatedBy:      optional(pc.Request.UpdatedBy),
	}

	page := strconv.Itoa(pc.PageNumber)
	q.PageNumber = &page

	if qt := trimmed(c, "question_type"); qt != "" {
		if domain.ValidQuestionType(qt) {
			q.QuestionType = &qt
		} else {
			s.log.Warn().
				Str("question_type", qt).
				Int("page", pc.PageNumber).
				Msg("discarding unrecognized question type")
		}
	}

	if diff := trimmed(c, "question_difficulty"); diff != "" {
		if domain.ValidDifficulty(diff) {
			q.QuestionDifficulty = &diff
		} else {
			s.log.Warn().
				Str("question_difficulty", diff).
				Int("page", pc.PageNumber).
				Msg("discarding unrecognized difficulty")
		}
	}

	q.Option1 = optionalField(c, "option1")
	q.Option2 = optionalField(c, "option2")
	q.Option3 = optionalField(c, "option3")
	q.Option4 = optionalField(c, "option4")
	q.Option5 = optionalField(c, "option5")
	q.Option6 = optionalField(c, "option6")
	q.AnswerSteps = optionalField(c, "answer_steps")
	q.CorrectAnswer = optionalField(c, "correct_answer")

	return q, nil
}

// trimmed returns the candidate field as a trimmed string. Non-string scalars
// are stringified rather than rejected; objects and arrays collapse to empty.
func trimmed(c domain.Candidate, key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}

// optionalField maps empty-after-trim to absent.
func optionalField(c domain.Candidate, key string) *string {
	if s := trimmed(c, key); s != "" {
		return &s
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
