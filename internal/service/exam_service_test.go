package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/model"
)

type fakeExamStore struct {
	exams       []model.Exam
	registered  []model.ScoreEntry
	registerErr error
}

func (f *fakeExamStore) List(ctx context.Context) ([]model.Exam, error) {
	return f.exams, nil
}

func (f *fakeExamStore) NextRound(ctx context.Context) (int, error) {
	max := 0
	for _, e := range f.exams {
		if e.Round > max {
			max = e.Round
		}
	}
	return max + 1, nil
}

func (f *fakeExamStore) RegisterWithScores(ctx context.Context, name string, entries []model.ScoreEntry) (*model.Exam, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	round, _ := f.NextRound(ctx)
	e := model.Exam{ID: len(f.exams) + 1, Name: name, Round: round}
	f.exams = append(f.exams, e)
	f.registered = append(f.registered, entries...)
	return &e, nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(ctx context.Context, entity, action string) {
	f.events = append(f.events, entity+":"+action)
}

func TestRegisterAssignsNextRound(t *testing.T) {
	store := &fakeExamStore{exams: []model.Exam{
		{ID: 1, Name: "Mock1", Round: 1},
		{ID: 2, Name: "Mock2", Round: 2},
		{ID: 3, Name: "Mock4", Round: 4}, // round 3 was deleted at some point
	}}
	pub := &fakePublisher{}
	svc := NewExamService(store, pub, zerolog.Nop())

	exam, err := svc.Register(context.Background(), &model.RegisterExamRequest{
		Name:   "Mock5",
		Scores: []model.ScoreEntry{{StudentID: 1, Value: 88}},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if exam.Round != 5 {
		t.Errorf("round = %d, want 5 (max+1, no gap filling)", exam.Round)
	}
	if len(pub.events) != 1 || pub.events[0] != "exams:created" {
		t.Errorf("expected one exams:created event, got %v", pub.events)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.RegisterExamRequest
		wantErr error
	}{
		{"blank name", model.RegisterExamRequest{Name: "  ", Scores: []model.ScoreEntry{{StudentID: 1, Value: 50}}}, ErrEmptyExamName},
		{"no scores", model.RegisterExamRequest{Name: "Mock1"}, ErrNoScores},
		{"score above range", model.RegisterExamRequest{Name: "Mock1", Scores: []model.ScoreEntry{{StudentID: 1, Value: 101}}}, ErrScoreOutOfRange},
		{"score below range", model.RegisterExamRequest{Name: "Mock1", Scores: []model.ScoreEntry{{StudentID: 1, Value: -1}}}, ErrScoreOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeExamStore{}
			pub := &fakePublisher{}
			svc := NewExamService(store, pub, zerolog.Nop())

			_, err := svc.Register(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			// Validation errors must fire before any store call.
			if len(store.registered) != 0 {
				t.Errorf("store was called despite validation error")
			}
			if len(pub.events) != 0 {
				t.Errorf("change event published despite validation error")
			}
		})
	}
}

func TestRegisterBoundaryScoresAccepted(t *testing.T) {
	store := &fakeExamStore{}
	svc := NewExamService(store, &fakePublisher{}, zerolog.Nop())

	_, err := svc.Register(context.Background(), &model.RegisterExamRequest{
		Name:   "Mock1",
		Scores: []model.ScoreEntry{{StudentID: 1, Value: 0}, {StudentID: 2, Value: 100}},
	})
	if err != nil {
		t.Fatalf("boundary values should be valid: %v", err)
	}
	if len(store.registered) != 2 {
		t.Errorf("expected 2 inserted scores, got %d", len(store.registered))
	}
}

func TestRegisterStoreFailureNoEvent(t *testing.T) {
	store := &fakeExamStore{registerErr: errors.New("db down")}
	pub := &fakePublisher{}
	svc := NewExamService(store, pub, zerolog.Nop())

	_, err := svc.Register(context.Background(), &model.RegisterExamRequest{
		Name:   "Mock1",
		Scores: []model.ScoreEntry{{StudentID: 1, Value: 70}},
	})
	if err == nil {
		t.Fatal("expected store error")
	}
	if len(pub.events) != 0 {
		t.Errorf("no change event should be published on failure, got %v", pub.events)
	}
}
