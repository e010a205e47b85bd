package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"brainscore-quiz-service/internal/domain"
)

const uniqueViolation = "23505"

const quizColumns = `id, slug, title, description, type, questions, created_at, updated_at`

// QuizStore keeps quizzes in Postgres with the question list as JSONB.
type QuizStore struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool, clock: time.Now}
}

func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}

func (s *QuizStore) GetBySlug(ctx context.Context, slug string) (domain.Quiz, error) {
	return s.getOne(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE slug=$1`, slug)
}

func (s *QuizStore) GetByID(ctx context.Context, id string) (domain.Quiz, error) {
	return s.getOne(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id)
}

func (s *QuizStore) Create(ctx context.Context, in domain.QuizInput) (domain.Quiz, error) {
	in = in.Clean()
	questions, err := json.Marshal(in.Questions)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal questions: %w", err)
	}

	now := s.clock().UTC().Truncate(time.Microsecond)
	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Questions:   in.Questions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO quizzes (`+quizColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		quiz.ID, quiz.Slug, quiz.Title, quiz.Description, string(quiz.Type), questions, quiz.CreatedAt, quiz.UpdatedAt)
	if err != nil {
		return domain.Quiz{}, mapWriteError("create quiz", err)
	}
	return quiz, nil
}

func (s *QuizStore) Update(ctx context.Context, id string, in domain.QuizInput) (domain.Quiz, error) {
	in = in.Clean()
	questions, err := json.Marshal(in.Questions)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal questions: %w", err)
	}

	now := s.clock().UTC().Truncate(time.Microsecond)
	tag, err := s.pool.Exec(ctx, `UPDATE quizzes SET slug=$2, title=$3, description=$4, type=$5, questions=$6, updated_at=$7 WHERE id=$1`,
		id, in.Slug, in.Title, in.Description, string(in.Type), questions, now)
	if err != nil {
		return domain.Quiz{}, mapWriteError("update quiz", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) getOne(ctx context.Context, query string, arg string) (domain.Quiz, error) {
	quiz, err := scanQuiz(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, err
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz     domain.Quiz
		quizType string
		raw      []byte
	)
	if err := row.Scan(&quiz.ID, &quiz.Slug, &quiz.Title, &quiz.Description, &quizType, &raw, &quiz.CreatedAt, &quiz.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Type = domain.QuizType(quizType)
	if err := json.Unmarshal(raw, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return quiz, nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrSlugTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}
