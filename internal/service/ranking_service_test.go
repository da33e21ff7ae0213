package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/model"
)

type fakeScoreStore struct {
	mu      sync.Mutex
	scores  []model.Score
	calls   int32
	entered chan struct{} // closed on the first ListJoined, when set
	release chan struct{} // blocks ListJoined until closed, when set
}

func (f *fakeScoreStore) ListJoined(ctx context.Context) ([]model.Score, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 && f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Score, len(f.scores))
	copy(out, f.scores)
	return out, nil
}

func (f *fakeScoreStore) setValue(scoreID, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.scores {
		if f.scores[i].ID == scoreID {
			f.scores[i].Value = value
		}
	}
}

type fakeProjectionCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newFakeProjectionCache() *fakeProjectionCache {
	return &fakeProjectionCache{data: map[string][]byte{}}
}

func (f *fakeProjectionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	return raw, ok, nil
}

func (f *fakeProjectionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.sets++
	return nil
}

type fakeVersionSource struct {
	version int64
}

func (f *fakeVersionSource) Version(ctx context.Context) (int64, error) {
	return f.version, nil
}

func newRankingService(scores *fakeScoreStore) (*RankingService, *fakeVersionSource, *fakeProjectionCache) {
	versions := &fakeVersionSource{version: 1}
	cache := newFakeProjectionCache()
	exams := &fakeExamStore{exams: []model.Exam{{ID: 1, Name: "Mock1", Round: 1}}}
	students := &fakeStudentStore{students: []model.Student{
		{ID: 1, Name: "민준"}, {ID: 2, Name: "서연"},
	}}
	svc := NewRankingService(scores, students, exams, versions, cache, zerolog.Nop())
	return svc, versions, cache
}

func round1Scores() []model.Score {
	return []model.Score{
		{ID: 1, ExamID: 1, StudentID: 1, Value: 90, Round: 1, ExamName: "Mock1", StudentName: "민준"},
		{ID: 2, ExamID: 1, StudentID: 2, Value: 80, Round: 1, ExamName: "Mock1", StudentName: "서연"},
	}
}

func TestRankingsCachedUntilVersionBump(t *testing.T) {
	store := &fakeScoreStore{scores: round1Scores()}
	svc, versions, _ := newRankingService(store)
	ctx := context.Background()

	first, err := svc.Rankings(ctx, nil)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if got := first[0].Entries[0].Value; got != 90 {
		t.Fatalf("top value = %d, want 90", got)
	}

	// Change the underlying data without bumping the version: the cached
	// projection must still be served, without touching the store again.
	store.setValue(1, 60)

	cached, err := svc.Rankings(ctx, nil)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if got := cached[0].Entries[0].Value; got != 90 {
		t.Errorf("top value = %d, want cached 90", got)
	}
	if calls := atomic.LoadInt32(&store.calls); calls != 1 {
		t.Errorf("store calls = %d, want 1 (second read must hit the cache)", calls)
	}

	// A version bump changes the cache key and forces recomputation.
	versions.version = 2

	fresh, err := svc.Rankings(ctx, nil)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if got := fresh[0].Entries[0].Value; got != 80 {
		t.Errorf("top value after bump = %d, want 80", got)
	}
	if calls := atomic.LoadInt32(&store.calls); calls != 2 {
		t.Errorf("store calls = %d, want 2", calls)
	}
}

func TestRankingsRoundFilterCachedSeparately(t *testing.T) {
	store := &fakeScoreStore{scores: round1Scores()}
	svc, _, cache := newRankingService(store)
	ctx := context.Background()

	if _, err := svc.Rankings(ctx, nil); err != nil {
		t.Fatalf("rankings: %v", err)
	}
	round := 1
	if _, err := svc.Rankings(ctx, &round); err != nil {
		t.Fatalf("rankings round 1: %v", err)
	}

	// Filtered and unfiltered projections live under distinct keys.
	if cache.sets != 2 {
		t.Errorf("cache writes = %d, want 2", cache.sets)
	}
}

func TestConcurrentRankingsCoalesceToOneComputation(t *testing.T) {
	store := &fakeScoreStore{
		scores:  round1Scores(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _, _ := newRankingService(store)

	const clients = 8
	var wg sync.WaitGroup
	errs := make(chan error, clients)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rankings(context.Background(), nil)
			errs <- err
		}()
	}

	// Hold the store until every client had time to pile up behind the
	// in-flight computation, then let it finish.
	<-store.entered
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("rankings: %v", err)
		}
	}
	if calls := atomic.LoadInt32(&store.calls); calls != 1 {
		t.Errorf("store calls = %d, want 1 (concurrent refetches must coalesce)", calls)
	}
}

func TestSeriesCachedPerStudentAndVersion(t *testing.T) {
	store := &fakeScoreStore{scores: round1Scores()}
	svc, versions, _ := newRankingService(store)
	ctx := context.Background()

	first, err := svc.SeriesForStudent(ctx, 1)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if first[0].Score == nil || *first[0].Score != 90 {
		t.Fatalf("series point = %v, want 90", first[0].Score)
	}

	store.setValue(1, 60)

	cached, err := svc.SeriesForStudent(ctx, 1)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if cached[0].Score == nil || *cached[0].Score != 90 {
		t.Errorf("series point = %v, want cached 90", cached[0].Score)
	}

	versions.version = 2

	fresh, err := svc.SeriesForStudent(ctx, 1)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if fresh[0].Score == nil || *fresh[0].Score != 60 {
		t.Errorf("series point after bump = %v, want 60", fresh[0].Score)
	}
}
