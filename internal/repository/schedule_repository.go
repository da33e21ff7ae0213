package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// ScheduleRepository handles exam schedules, their participants and their
// attachment metadata.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// List retrieves all schedules ordered by date ascending, with their
// participants and file metadata attached.
func (r *ScheduleRepository) List(ctx context.Context) ([]model.ExamSchedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, date, created_at FROM exam_schedules ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []model.ExamSchedule
	index := make(map[int]int)
	for rows.Next() {
		var s model.ExamSchedule
		if err := rows.Scan(&s.ID, &s.Name, &s.Date, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Participants = []model.ExamParticipant{}
		s.Files = []model.ScheduleFile{}
		index[s.ID] = len(schedules)
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return []model.ExamSchedule{}, nil
	}

	parts, err := r.listParticipants(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if i, ok := index[p.ScheduleID]; ok {
			schedules[i].Participants = append(schedules[i].Participants, p)
		}
	}

	files, err := r.ListFiles(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if i, ok := index[f.ScheduleID]; ok {
			schedules[i].Files = append(schedules[i].Files, f)
		}
	}

	return schedules, nil
}

// GetByID retrieves one schedule without relations.
func (r *ScheduleRepository) GetByID(ctx context.Context, id int) (*model.ExamSchedule, error) {
	s := &model.ExamSchedule{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, date, created_at FROM exam_schedules WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Date, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateWithRelations inserts a schedule, one not-participating row per
// roster student, and the metadata rows for already-stored attachment
// blobs, all in one transaction.
func (r *ScheduleRepository) CreateWithRelations(ctx context.Context, name string, date time.Time, studentNames []string, files []model.ScheduleFile) (*model.ExamSchedule, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	s := &model.ExamSchedule{Name: name, Date: date}
	err = tx.QueryRow(ctx,
		`INSERT INTO exam_schedules (name, date) VALUES ($1, $2)
		 RETURNING id, created_at`,
		name, date,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}

	s.Participants = make([]model.ExamParticipant, 0, len(studentNames))
	for _, sn := range studentNames {
		p := model.ExamParticipant{ScheduleID: s.ID, StudentName: sn}
		err = tx.QueryRow(ctx,
			`INSERT INTO exam_participants (schedule_id, student_name, is_participating)
			 VALUES ($1, $2, false) RETURNING id`,
			s.ID, sn,
		).Scan(&p.ID)
		if err != nil {
			return nil, fmt.Errorf("insert participant %q: %w", sn, err)
		}
		s.Participants = append(s.Participants, p)
	}

	s.Files = make([]model.ScheduleFile, 0, len(files))
	for _, f := range files {
		f.ScheduleID = s.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO schedule_files (schedule_id, name, path, size, content_type)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
			s.ID, f.Name, f.Path, f.Size, f.ContentType,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert file metadata %q: %w", f.Name, err)
		}
		s.Files = append(s.Files, f)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

// UpsertParticipant sets one student's participation flag for a schedule.
// Idempotent: repeated calls with the same value are no-ops.
func (r *ScheduleRepository) UpsertParticipant(ctx context.Context, scheduleID int, studentName string, isParticipating bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_participants (schedule_id, student_name, is_participating)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (schedule_id, student_name)
		 DO UPDATE SET is_participating = EXCLUDED.is_participating`,
		scheduleID, studentName, isParticipating)
	return err
}

// Delete removes a schedule row. Participants and file metadata cascade
// via foreign keys; blob cleanup happens in the service before this call.
func (r *ScheduleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exam_schedules WHERE id = $1`, id)
	return err
}

// ListExpired retrieves schedules dated strictly before the given day.
func (r *ScheduleRepository) ListExpired(ctx context.Context, before time.Time) ([]model.ExamSchedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, date, created_at FROM exam_schedules
		 WHERE date < $1 ORDER BY date`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []model.ExamSchedule
	for rows.Next() {
		var s model.ExamSchedule
		if err := rows.Scan(&s.ID, &s.Name, &s.Date, &s.CreatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) listParticipants(ctx context.Context) ([]model.ExamParticipant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, schedule_id, student_name, is_participating
		 FROM exam_participants ORDER BY student_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []model.ExamParticipant
	for rows.Next() {
		var p model.ExamParticipant
		if err := rows.Scan(&p.ID, &p.ScheduleID, &p.StudentName, &p.IsParticipating); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// ListFiles retrieves attachment metadata, optionally filtered by
// schedule (scheduleID 0 lists everything).
func (r *ScheduleRepository) ListFiles(ctx context.Context, scheduleID int) ([]model.ScheduleFile, error) {
	query := `SELECT id, schedule_id, name, path, size, content_type, created_at
	          FROM schedule_files`
	var args []interface{}
	if scheduleID > 0 {
		query += ` WHERE schedule_id = $1`
		args = append(args, scheduleID)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []model.ScheduleFile
	for rows.Next() {
		var f model.ScheduleFile
		if err := rows.Scan(&f.ID, &f.ScheduleID, &f.Name, &f.Path, &f.Size,
			&f.ContentType, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
