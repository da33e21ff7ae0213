package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// Domain errors for the schedule workflow.
var (
	ErrEmptyScheduleName = errors.New("schedule name must not be empty")
	ErrScheduleDatePast  = errors.New("schedule date is in the past")
)

// ScheduleStore is the persistence surface the schedule workflow needs.
type ScheduleStore interface {
	List(ctx context.Context) ([]model.ExamSchedule, error)
	GetByID(ctx context.Context, id int) (*model.ExamSchedule, error)
	CreateWithRelations(ctx context.Context, name string, date time.Time, studentNames []string, files []model.ScheduleFile) (*model.ExamSchedule, error)
	UpsertParticipant(ctx context.Context, scheduleID int, studentName string, isParticipating bool) error
	Delete(ctx context.Context, id int) error
	ListExpired(ctx context.Context, before time.Time) ([]model.ExamSchedule, error)
	ListFiles(ctx context.Context, scheduleID int) ([]model.ScheduleFile, error)
}

// BlobStore deletes stored attachment blobs.
type BlobStore interface {
	Delete(path string) error
}

// ScheduleService handles exam schedule CRUD and the expiry sweep.
// Date comparisons are at day granularity on the server's local clock.
type ScheduleService struct {
	schedules ScheduleStore
	students  StudentStore
	blobs     BlobStore
	changes   changePublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(schedules ScheduleStore, students StudentStore, blobs BlobStore, changes changePublisher, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		students:  students,
		blobs:     blobs,
		changes:   changes,
		now:       time.Now,
		log:       log.With().Str("component", "schedule_service").Logger(),
	}
}

// List retrieves all schedules with participants and files, date ascending.
func (s *ScheduleService) List(ctx context.Context) ([]model.ExamSchedule, error) {
	return s.schedules.List(ctx)
}

// ListFiles retrieves one schedule's attachment metadata.
func (s *ScheduleService) ListFiles(ctx context.Context, scheduleID int) ([]model.ScheduleFile, error) {
	files, err := s.schedules.ListFiles(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []model.ScheduleFile{}
	}
	return files, nil
}

// ValidateDate reports whether a schedule date is acceptable: today or
// later at day granularity. Exposed so the handler can reject a past
// date before writing any attachment blob.
func (s *ScheduleService) ValidateDate(date time.Time) error {
	if dayOf(date).Before(dayOf(s.now())) {
		return ErrScheduleDatePast
	}
	return nil
}

// Create validates and commits one schedule. The date must be today or
// later; validation happens before any store call. One not-participating
// row is created per roster student, and the metadata rows for the given
// already-stored blobs are recorded in the same transaction. If the
// transaction fails the blobs are unlinked best-effort.
func (s *ScheduleService) Create(ctx context.Context, name string, date time.Time, files []model.ScheduleFile) (*model.ExamSchedule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyScheduleName
	}
	if err := s.ValidateDate(date); err != nil {
		return nil, err
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	names := make([]string, 0, len(students))
	for _, st := range students {
		names = append(names, st.Name)
	}

	schedule, err := s.schedules.CreateWithRelations(ctx, name, dayOf(date), names, files)
	if err != nil {
		for _, f := range files {
			if derr := s.blobs.Delete(f.Path); derr != nil {
				s.log.Warn().Err(derr).Str("path", f.Path).Msg("Orphan blob cleanup failed")
			}
		}
		return nil, err
	}

	s.log.Info().
		Int("schedule_id", schedule.ID).
		Str("date", schedule.Date.Format("2006-01-02")).
		Int("files", len(files)).
		Msg("Schedule created")

	s.changes.Publish(ctx, "exam_schedules", "created")
	return schedule, nil
}

// ToggleParticipant upserts one student's participation flag.
func (s *ScheduleService) ToggleParticipant(ctx context.Context, scheduleID int, studentName string, isParticipating bool) error {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return err
	}
	if err := s.schedules.UpsertParticipant(ctx, scheduleID, studentName, isParticipating); err != nil {
		return err
	}
	s.changes.Publish(ctx, "exam_participants", "upserted")
	return nil
}

// Delete removes a schedule: blobs first (a blob already missing from
// storage is not fatal), then the rows. Participants and file metadata
// cascade with the schedule row.
func (s *ScheduleService) Delete(ctx context.Context, scheduleID int) error {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return err
	}
	if err := s.deleteCascade(ctx, scheduleID); err != nil {
		return err
	}
	s.changes.Publish(ctx, "exam_schedules", "deleted")
	return nil
}

// SweepExpired deletes every schedule dated strictly before today.
// Per-schedule failures are logged and skipped so one broken schedule
// cannot wedge the sweep. Returns the number of schedules removed.
func (s *ScheduleService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.schedules.ListExpired(ctx, dayOf(s.now()))
	if err != nil {
		return 0, fmt.Errorf("list expired schedules: %w", err)
	}

	removed := 0
	for _, schedule := range expired {
		if err := s.deleteCascade(ctx, schedule.ID); err != nil {
			s.log.Error().Err(err).
				Int("schedule_id", schedule.ID).
				Str("name", schedule.Name).
				Msg("Sweep failed for schedule, skipping")
			continue
		}
		removed++
		s.log.Info().
			Int("schedule_id", schedule.ID).
			Str("date", schedule.Date.Format("2006-01-02")).
			Msg("Expired schedule swept")
	}

	if removed > 0 {
		s.changes.Publish(ctx, "exam_schedules", "swept")
	}
	return removed, nil
}

func (s *ScheduleService) deleteCascade(ctx context.Context, scheduleID int) error {
	files, err := s.schedules.ListFiles(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	for _, f := range files {
		if err := s.blobs.Delete(f.Path); err != nil {
			// Metadata still goes away below.
			s.log.Warn().Err(err).Str("path", f.Path).Msg("Blob delete failed")
		}
	}
	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// dayOf truncates a time to local midnight.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
