// Package sqlite stores quizzes in a single-file SQLite database for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite" // driver: sqlite
	sqlite3 "modernc.org/sqlite/lib"

	"brainscore-quiz-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
  id          TEXT PRIMARY KEY,
  slug        TEXT NOT NULL UNIQUE,
  title       TEXT NOT NULL,
  description TEXT NOT NULL,
  type        TEXT NOT NULL,
  questions   TEXT NOT NULL,
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS quizzes_created_at_idx ON quizzes (created_at DESC);
`

const quizColumns = `id, slug, title, description, type, questions, created_at, updated_at`

// QuizStore implements the quiz store on database/sql with the modernc driver.
type QuizStore struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens path and ensures the schema exists.
func Open(ctx context.Context, path string) (*QuizStore, error) {
	if path == "" {
		path = "brainscore.db"
	}
	dsn := "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer keeps SQLITE_BUSY out of concurrent saves
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &QuizStore{db: db, clock: time.Now}, nil
}

func (s *QuizStore) Close() error { return s.db.Close() }

func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC, slug`)
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
		return domain.Quiz{}, err
	}

	now := s.clock().UTC().Truncate(time.Millisecond)
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
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (`+quizColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		quiz.ID, quiz.Slug, quiz.Title, quiz.Description, string(quiz.Type), string(questions), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return domain.Quiz{}, mapWriteError("create quiz", err)
	}
	return quiz, nil
}

func (s *QuizStore) Update(ctx context.Context, id string, in domain.QuizInput) (domain.Quiz, error) {
	in = in.Clean()
	questions, err := json.Marshal(in.Questions)
	if err != nil {
		return domain.Quiz{}, err
	}

	now := s.clock().UTC().Truncate(time.Millisecond)
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET slug=$2, title=$3, description=$4, type=$5, questions=$6, updated_at=$7 WHERE id=$1`,
		id, in.Slug, in.Title, in.Description, string(in.Type), string(questions), now.UnixMilli())
	if err != nil {
		return domain.Quiz{}, mapWriteError("update quiz", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) getOne(ctx context.Context, query, arg string) (domain.Quiz, error) {
	quiz, err := scanQuiz(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row scanner) (domain.Quiz, error) {
	var (
		quiz               domain.Quiz
		quizType, raw      string
		created, updatedAt int64
	)
	if err := row.Scan(&quiz.ID, &quiz.Slug, &quiz.Title, &quiz.Description, &quizType, &raw, &created, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Type = domain.QuizType(quizType)
	quiz.CreatedAt = time.UnixMilli(created).UTC()
	quiz.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if err := json.Unmarshal([]byte(raw), &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return quiz, nil
}

// mapWriteError turns the slug uniqueness constraint into ErrSlugTaken.
func mapWriteError(op string, err error) error {
	// slug is the only UNIQUE column; the id primary key reports SQLITE_CONSTRAINT_PRIMARYKEY
	var sqlErr *moderncsqlite.Error
	if errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return domain.ErrSlugTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}
