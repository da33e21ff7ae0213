package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// ScoreRepository handles read access to the denormalized score view the
// ranking engine consumes.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// ListJoined retrieves every score joined with its exam and student.
// Scores referencing rows that no longer exist simply do not appear;
// downstream derivation additionally tolerates inconsistent rows.
func (r *ScoreRepository) ListJoined(ctx context.Context) ([]model.Score, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sc.id, sc.exam_id, sc.student_id, sc.value,
		        e.round, e.name, st.name, sc.created_at
		 FROM scores sc
		 JOIN exams e ON e.id = sc.exam_id
		 JOIN students st ON st.id = sc.student_id
		 ORDER BY e.round, st.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []model.Score
	for rows.Next() {
		var s model.Score
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Value,
			&s.Round, &s.ExamName, &s.StudentName, &s.CreatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
