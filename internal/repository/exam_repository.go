package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// ExamRepository handles exam and score data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// List retrieves all exams ordered by round ascending.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, round, created_at FROM exams ORDER BY round`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.Round, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// NextRound computes the round a fresh registration would be assigned:
// 1 + max(existing rounds), or 1 when the table is empty.
func (r *ExamRepository) NextRound(ctx context.Context) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(round), 0) + 1 FROM exams`).Scan(&next)
	return next, err
}

// RegisterWithScores inserts an exam and its score rows in one
// transaction. The round is assigned inside the transaction so two
// concurrent registrations cannot both observe the same max; the second
// commit fails on the unique round index instead of silently colliding.
func (r *ExamRepository) RegisterWithScores(ctx context.Context, name string, entries []model.ScoreEntry) (*model.Exam, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	e := &model.Exam{Name: name}
	err = tx.QueryRow(ctx,
		`INSERT INTO exams (name, round)
		 VALUES ($1, (SELECT COALESCE(MAX(round), 0) + 1 FROM exams))
		 RETURNING id, round, created_at`,
		name,
	).Scan(&e.ID, &e.Round, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert exam: %w", err)
	}

	for _, entry := range entries {
		_, err = tx.Exec(ctx,
			`INSERT INTO scores (exam_id, student_id, value) VALUES ($1, $2, $3)`,
			e.ID, entry.StudentID, entry.Value)
		if err != nil {
			return nil, fmt.Errorf("insert score for student %d: %w", entry.StudentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}
