package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/model"
)

type fakeScheduleStore struct {
	schedules map[int]*model.ExamSchedule
	files     map[int][]model.ScheduleFile
	parts     map[int]map[string]bool
	nextID    int
	createErr error
	deleteErr map[int]error
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{
		schedules: map[int]*model.ExamSchedule{},
		files:     map[int][]model.ScheduleFile{},
		parts:     map[int]map[string]bool{},
		deleteErr: map[int]error{},
	}
}

func (f *fakeScheduleStore) add(date time.Time, files ...model.ScheduleFile) *model.ExamSchedule {
	f.nextID++
	s := &model.ExamSchedule{ID: f.nextID, Name: "mock", Date: date}
	f.schedules[s.ID] = s
	f.files[s.ID] = files
	return s
}

func (f *fakeScheduleStore) List(ctx context.Context) ([]model.ExamSchedule, error) {
	var out []model.ExamSchedule
	for _, s := range f.schedules {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeScheduleStore) GetByID(ctx context.Context, id int) (*model.ExamSchedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeScheduleStore) CreateWithRelations(ctx context.Context, name string, date time.Time, studentNames []string, files []model.ScheduleFile) (*model.ExamSchedule, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := f.add(date, files...)
	s.Name = name
	f.parts[s.ID] = map[string]bool{}
	for _, sn := range studentNames {
		f.parts[s.ID][sn] = false
	}
	return s, nil
}

func (f *fakeScheduleStore) UpsertParticipant(ctx context.Context, scheduleID int, studentName string, isParticipating bool) error {
	if f.parts[scheduleID] == nil {
		f.parts[scheduleID] = map[string]bool{}
	}
	f.parts[scheduleID][studentName] = isParticipating
	return nil
}

func (f *fakeScheduleStore) Delete(ctx context.Context, id int) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	delete(f.schedules, id)
	delete(f.files, id)
	delete(f.parts, id)
	return nil
}

func (f *fakeScheduleStore) ListExpired(ctx context.Context, before time.Time) ([]model.ExamSchedule, error) {
	var out []model.ExamSchedule
	for _, s := range f.schedules {
		if s.Date.Before(before) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeScheduleStore) ListFiles(ctx context.Context, scheduleID int) ([]model.ScheduleFile, error) {
	return f.files[scheduleID], nil
}

type fakeStudentStore struct {
	students []model.Student
}

func (f *fakeStudentStore) List(ctx context.Context) ([]model.Student, error) {
	return f.students, nil
}

func (f *fakeStudentStore) GetByID(ctx context.Context, id int) (*model.Student, error) {
	for _, s := range f.students {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeBlobStore struct {
	deleted   []string
	deleteErr map[string]error
}

func (f *fakeBlobStore) Delete(path string) error {
	if err := f.deleteErr[path]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func newScheduleService(store *fakeScheduleStore, blobs *fakeBlobStore, now time.Time) (*ScheduleService, *fakePublisher) {
	pub := &fakePublisher{}
	students := &fakeStudentStore{students: []model.Student{
		{ID: 1, Name: "민준"}, {ID: 2, Name: "서연"},
	}}
	svc := NewScheduleService(store, students, blobs, pub, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc, pub
}

func day(offset int) time.Time {
	base := time.Date(2026, 9, 1, 14, 30, 0, 0, time.Local)
	return base.AddDate(0, 0, offset)
}

func TestCreateRejectsPastDate(t *testing.T) {
	store := newFakeScheduleStore()
	svc, pub := newScheduleService(store, &fakeBlobStore{}, day(0))

	_, err := svc.Create(context.Background(), "June mock", day(-1), nil)
	if !errors.Is(err, ErrScheduleDatePast) {
		t.Fatalf("err = %v, want ErrScheduleDatePast", err)
	}
	if len(store.schedules) != 0 {
		t.Error("store was called despite validation error")
	}
	if len(pub.events) != 0 {
		t.Error("change event published despite validation error")
	}
}

func TestCreateAcceptsTodayAndLater(t *testing.T) {
	for _, offset := range []int{0, 1, 30} {
		store := newFakeScheduleStore()
		svc, _ := newScheduleService(store, &fakeBlobStore{}, day(0))

		s, err := svc.Create(context.Background(), "June mock", day(offset), nil)
		if err != nil {
			t.Fatalf("offset %d: create failed: %v", offset, err)
		}
		// One not-participating row per roster student.
		if got := len(store.parts[s.ID]); got != 2 {
			t.Errorf("offset %d: participants = %d, want 2", offset, got)
		}
		for name, participating := range store.parts[s.ID] {
			if participating {
				t.Errorf("offset %d: %s should default to not participating", offset, name)
			}
		}
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	store := newFakeScheduleStore()
	svc, _ := newScheduleService(store, &fakeBlobStore{}, day(0))

	_, err := svc.Create(context.Background(), "  ", day(1), nil)
	if !errors.Is(err, ErrEmptyScheduleName) {
		t.Fatalf("err = %v, want ErrEmptyScheduleName", err)
	}
	if len(store.schedules) != 0 {
		t.Error("store was called despite validation error")
	}
}

func TestCreateCleansUpBlobsOnStoreFailure(t *testing.T) {
	store := newFakeScheduleStore()
	store.createErr = errors.New("unique violation")
	blobs := &fakeBlobStore{}
	svc, pub := newScheduleService(store, blobs, day(0))

	_, err := svc.Create(context.Background(), "June mock", day(1),
		[]model.ScheduleFile{{Path: "a.pdf"}, {Path: "b.pdf"}})
	if err == nil {
		t.Fatal("expected store error")
	}
	if len(blobs.deleted) != 2 {
		t.Errorf("orphan blobs not cleaned up: %v", blobs.deleted)
	}
	if len(pub.events) != 0 {
		t.Errorf("no change event expected on failure, got %v", pub.events)
	}
}

func TestToggleParticipantIdempotent(t *testing.T) {
	store := newFakeScheduleStore()
	svc, _ := newScheduleService(store, &fakeBlobStore{}, day(0))

	s, err := svc.Create(context.Background(), "June mock", day(1), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.ToggleParticipant(context.Background(), s.ID, "민준", true); err != nil {
			t.Fatalf("toggle %d failed: %v", i, err)
		}
	}
	if !store.parts[s.ID]["민준"] {
		t.Error("participation flag not set")
	}

	if err := svc.ToggleParticipant(context.Background(), s.ID, "민준", false); err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	if store.parts[s.ID]["민준"] {
		t.Error("participation flag not cleared")
	}
}

func TestToggleParticipantUnknownSchedule(t *testing.T) {
	svc, _ := newScheduleService(newFakeScheduleStore(), &fakeBlobStore{}, day(0))

	err := svc.ToggleParticipant(context.Background(), 999, "민준", true)
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("err = %v, want pgx.ErrNoRows", err)
	}
}

func TestDeleteToleratesMissingBlob(t *testing.T) {
	store := newFakeScheduleStore()
	s := store.add(day(1),
		model.ScheduleFile{Path: "gone.pdf"},
		model.ScheduleFile{Path: "there.pdf"},
	)

	blobs := &fakeBlobStore{deleteErr: map[string]error{
		"gone.pdf": errors.New("blob backend unavailable"),
	}}
	svc, pub := newScheduleService(store, blobs, day(0))

	if err := svc.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("delete should tolerate blob failure: %v", err)
	}
	if _, ok := store.schedules[s.ID]; ok {
		t.Error("schedule row not deleted")
	}
	if len(pub.events) != 1 {
		t.Errorf("expected 1 change event, got %v", pub.events)
	}
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	// Scenario D: one schedule two days ago, one tomorrow.
	store := newFakeScheduleStore()
	old := store.add(day(-2), model.ScheduleFile{Path: "old.pdf"})
	upcoming := store.add(day(1))

	blobs := &fakeBlobStore{}
	svc, _ := newScheduleService(store, blobs, day(0))

	removed, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := store.schedules[old.ID]; ok {
		t.Error("expired schedule still present")
	}
	if _, ok := store.schedules[upcoming.ID]; !ok {
		t.Error("upcoming schedule was deleted")
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "old.pdf" {
		t.Errorf("blob cleanup = %v, want [old.pdf]", blobs.deleted)
	}
}

func TestSweepSkipsFailingSchedule(t *testing.T) {
	store := newFakeScheduleStore()
	bad := store.add(day(-3))
	good := store.add(day(-1))
	store.deleteErr[bad.ID] = errors.New("fk violation")

	svc, _ := newScheduleService(store, &fakeBlobStore{}, day(0))

	removed, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep should not abort on per-schedule failure: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := store.schedules[good.ID]; ok {
		t.Error("deletable schedule was skipped")
	}
}

func TestSweepDateBoundaryIsDayGranular(t *testing.T) {
	store := newFakeScheduleStore()
	// Dated today, but at an earlier hour than "now": not expired.
	today := store.add(time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local))

	svc, _ := newScheduleService(store, &fakeBlobStore{}, day(0))

	removed, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 (today is not expired)", removed)
	}
	if _, ok := store.schedules[today.ID]; !ok {
		t.Error("today's schedule must survive the sweep")
	}
}
