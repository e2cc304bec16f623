package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/database"
	"github.com/questbank/questbank-backend/pkg/errors"
)

// QuestionRepository persists sanitized questions.
type QuestionRepository struct {
	db *database.DB
}

func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const insertQuestion = `
	INSERT INTO questions (
		id, file_name, subject_name, lesson_title, class_name, specialization,
		question, question_type, question_difficulty, page_number,
		option1, option2, option3, option4, option5, option6,
		answer_steps, correct_answer, uploaded_by, updated_by,
		created_at, updated_at
	) VALUES (
		:id, :file_name, :subject_name, :lesson_title, :class_name, :specialization,
		:question, :question_type, :question_difficulty, :page_number,
		:option1, :option2, :option3, :option4, :option5, :option6,
		:answer_steps, :correct_answer, :uploaded_by, :updated_by,
		:created_at, :updated_at
	)
`

// SaveBatch stores one page's questions in a single transaction. Either every
// question in the batch commits or none do; earlier pages are unaffected.
// Returns the number of rows written.
func (r *QuestionRepository) SaveBatch(ctx context.Context, questions []*domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		q.CreatedAt = now
		q.UpdatedAt = now
	}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, q := range questions {
			if _, err := tx.NamedExecContext(ctx, insertQuestion, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Persistence(err)
	}

	return len(questions), nil
}

// CountByFile reports how many questions have been stored for a file name.
// Re-extraction of the same document appends rows, so the count grows with
// each run.
func (r *QuestionRepository) CountByFile(ctx context.Context, fileName string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM questions WHERE file_name = $1`, fileName)
	if err != nil {
		return 0, errors.Persistence(err)
	}
	return count, nil
}
