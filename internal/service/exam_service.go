package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// Domain errors for exam registration.
var (
	ErrEmptyExamName   = errors.New("exam name must not be empty")
	ErrNoScores        = errors.New("at least one student score is required")
	ErrScoreOutOfRange = errors.New("score value must be between 0 and 100")
)

// ExamStore is the persistence surface the registration workflow needs.
type ExamStore interface {
	List(ctx context.Context) ([]model.Exam, error)
	NextRound(ctx context.Context) (int, error)
	RegisterWithScores(ctx context.Context, name string, entries []model.ScoreEntry) (*model.Exam, error)
}

// changePublisher announces committed mutations to the change feed.
type changePublisher interface {
	Publish(ctx context.Context, entity, action string)
}

// ExamService handles the registration workflow: metadata validation,
// round auto-assignment and the atomic exam+scores insert.
type ExamService struct {
	exams   ExamStore
	changes changePublisher
	log     zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, changes changePublisher, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:   exams,
		changes: changes,
		log:     log.With().Str("component", "exam_service").Logger(),
	}
}

// List retrieves all exams ordered by round.
func (s *ExamService) List(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// NextRound reports the round a registration committed now would get.
// Shown to the user when they move past metadata entry; the authoritative
// assignment still happens inside the registration transaction.
func (s *ExamService) NextRound(ctx context.Context) (int, error) {
	return s.exams.NextRound(ctx)
}

// Register validates and commits one exam with its scores. All rows land
// in a single transaction; a failure leaves no partial write behind.
// Students left blank in the form are absent from req.Scores, never
// recorded as zero.
func (s *ExamService) Register(ctx context.Context, req *model.RegisterExamRequest) (*model.Exam, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyExamName
	}
	if len(req.Scores) == 0 {
		return nil, ErrNoScores
	}
	for _, entry := range req.Scores {
		if entry.Value < 0 || entry.Value > 100 {
			return nil, ErrScoreOutOfRange
		}
	}

	exam, err := s.exams.RegisterWithScores(ctx, name, req.Scores)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("exam_id", exam.ID).
		Int("round", exam.Round).
		Int("scores", len(req.Scores)).
		Msg("Exam registered")

	s.changes.Publish(ctx, "exams", "created")
	return exam, nil
}
