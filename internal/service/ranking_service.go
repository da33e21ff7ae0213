package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/config"
	"github.com/suneung/mocktrack-backend/internal/model"
	"github.com/suneung/mocktrack-backend/internal/ranking"
	"golang.org/x/sync/singleflight"
)

// derivedViewTTL bounds how long a cached projection can outlive its
// dataset version; versioned keys make staleness impossible, the TTL
// just keeps dead versions from accumulating.
const derivedViewTTL = 15 * time.Minute

// ScoreStore is the read surface for the denormalized score rows.
type ScoreStore interface {
	ListJoined(ctx context.Context) ([]model.Score, error)
}

// StudentStore is the read surface for the roster.
type StudentStore interface {
	List(ctx context.Context) ([]model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
}

// versionSource reports the current dataset version.
type versionSource interface {
	Version(ctx context.Context) (int64, error)
}

// RankingService serves the derived views: per-round rankings and
// per-student series. Projections are memoized in Redis under keys that
// embed the dataset version, and recomputation for a given key is
// coalesced through singleflight so a burst of change-feed refetches
// costs one derivation, not one per client.
type RankingService struct {
	scores   ScoreStore
	students StudentStore
	exams    ExamStore
	versions versionSource
	cache    ProjectionCache
	group    singleflight.Group
	log      zerolog.Logger
}

// NewRankingService creates a new RankingService.
func NewRankingService(scores ScoreStore, students StudentStore, exams ExamStore, versions versionSource, cache ProjectionCache, log zerolog.Logger) *RankingService {
	return &RankingService{
		scores:   scores,
		students: students,
		exams:    exams,
		versions: versions,
		cache:    cache,
		log:      log.With().Str("component", "ranking_service").Logger(),
	}
}

// Rankings returns the rankings of every round, or of a single round when
// roundFilter is non-nil, in ascending round order.
func (s *RankingService) Rankings(ctx context.Context, roundFilter *int) ([]ranking.RoundRanking, error) {
	version, err := s.versions.Version(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Version lookup failed, computing uncached")
		return s.computeRankings(ctx, roundFilter)
	}

	key := config.CacheKey.RankingsKey(version)
	if roundFilter != nil {
		key = config.CacheKey.RankingsForRoundKey(version, *roundFilter)
	}

	var out []ranking.RoundRanking
	if ok := s.cacheGet(ctx, key, &out); ok {
		return out, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		computed, err := s.computeRankings(ctx, roundFilter)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, computed)
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ranking.RoundRanking), nil
}

// SeriesForStudent returns one chartable point per round for a student.
func (s *RankingService) SeriesForStudent(ctx context.Context, studentID int) ([]ranking.SeriesPoint, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	version, err := s.versions.Version(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Version lookup failed, computing uncached")
		return s.computeSeries(ctx, student.Name)
	}

	key := config.CacheKey.StudentSeriesKey(version, studentID)

	var out []ranking.SeriesPoint
	if ok := s.cacheGet(ctx, key, &out); ok {
		return out, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		computed, err := s.computeSeries(ctx, student.Name)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, computed)
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ranking.SeriesPoint), nil
}

// Scores returns the raw joined score rows.
func (s *RankingService) Scores(ctx context.Context) ([]model.Score, error) {
	scores, err := s.scores.ListJoined(ctx)
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []model.Score{}
	}
	return scores, nil
}

// Students returns the roster.
func (s *RankingService) Students(ctx context.Context) ([]model.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

func (s *RankingService) computeRankings(ctx context.Context, roundFilter *int) ([]ranking.RoundRanking, error) {
	scores, exams, err := s.fetchInputs(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.AllRounds(scores, exams, roundFilter, s.log), nil
}

func (s *RankingService) computeSeries(ctx context.Context, studentName string) ([]ranking.SeriesPoint, error) {
	scores, exams, err := s.fetchInputs(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.SeriesForStudent(studentName, scores, exams, s.log), nil
}

func (s *RankingService) fetchInputs(ctx context.Context) ([]model.Score, []model.Exam, error) {
	scores, err := s.scores.ListJoined(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list scores: %w", err)
	}
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list exams: %w", err)
	}
	return scores, exams, nil
}

// cacheGet loads a cached projection. Cache trouble is never an error;
// the caller just recomputes.
func (s *RankingService) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt, ignoring")
		return false
	}
	return true
}

func (s *RankingService) cacheSet(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, derivedViewTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
