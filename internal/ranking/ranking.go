// Package ranking derives read-side views from raw score rows: per-round
// standard-competition rankings and per-student score series. Everything
// here is pure in-memory computation over collections already fetched
// from PostgreSQL; no ordering is assumed on any input slice.
package ranking

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// Entry is one ranked score inside a round.
type Entry struct {
	StudentID   int    `json:"student_id"`
	StudentName string `json:"student_name"`
	Value       int    `json:"value"`
	Rank        int    `json:"rank"`
}

// RoundRanking is the full ranking of one round. Entries is empty (never
// nil) for a round with no scores; ranks are never fabricated.
type RoundRanking struct {
	Round    int     `json:"round"`
	ExamName string  `json:"exam_name"`
	Entries  []Entry `json:"entries"`
}

// SeriesPoint is one student's result, or lack thereof, for one round.
// A nil Score means the student did not attend; consumers must render it
// as a gap, not a zero.
type SeriesPoint struct {
	Round    int    `json:"round"`
	Score    *int   `json:"score"`
	ExamName string `json:"exam_name"`
}

// ForRound ranks the scores of a single round using standard competition
// ranking: tied values share the same rank and the next distinct value's
// rank skips ahead by the tie-group size ([90,90,80,70] → [1,1,3,4]).
//
// Tie order among equal values is not part of the contract; entries are
// sorted by student name within a value so output is reproducible.
// Scores with missing join data (no student name attached) are dropped
// with a warning rather than aborting the computation.
func ForRound(scores []model.Score, round int, log zerolog.Logger) RoundRanking {
	rr := RoundRanking{Round: round, Entries: []Entry{}}

	filtered := make([]model.Score, 0, len(scores))
	for _, s := range scores {
		if s.Round != round {
			continue
		}
		if s.StudentName == "" {
			log.Warn().
				Int("score_id", s.ID).
				Int("round", round).
				Msg("Dropping score with missing student join")
			continue
		}
		filtered = append(filtered, s)
	}
	if len(filtered) == 0 {
		return rr
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Value != filtered[j].Value {
			return filtered[i].Value > filtered[j].Value
		}
		return filtered[i].StudentName < filtered[j].StudentName
	})

	rr.ExamName = filtered[0].ExamName

	rank := 1
	tieCount := 1
	for i, s := range filtered {
		if i > 0 {
			if s.Value == filtered[i-1].Value {
				tieCount++
			} else {
				rank += tieCount
				tieCount = 1
			}
		}
		rr.Entries = append(rr.Entries, Entry{
			StudentID:   s.StudentID,
			StudentName: s.StudentName,
			Value:       s.Value,
			Rank:        rank,
		})
	}

	return rr
}

// AllRounds ranks every distinct round present among exams, ascending.
// A non-nil roundFilter restricts the enumeration to that single round.
// Scores whose round matches no exam are orphans from not-yet-consistent
// data; they are logged and excluded.
func AllRounds(scores []model.Score, exams []model.Exam, roundFilter *int, log zerolog.Logger) []RoundRanking {
	rounds, names := distinctRounds(exams)

	known := make(map[int]bool, len(rounds))
	for _, r := range rounds {
		known[r] = true
	}
	for _, s := range scores {
		if !known[s.Round] {
			log.Warn().
				Int("score_id", s.ID).
				Int("round", s.Round).
				Msg("Dropping score with no matching exam")
		}
	}

	out := make([]RoundRanking, 0, len(rounds))
	for _, r := range rounds {
		if roundFilter != nil && r != *roundFilter {
			continue
		}
		rr := ForRound(scores, r, log)
		if rr.ExamName == "" {
			rr.ExamName = names[r]
		}
		out = append(out, rr)
	}
	return out
}

// SeriesForStudent produces exactly one point per distinct round among
// exams, ascending; the x-axis domain is the exam history, not the
// student's attendance. Rounds without a recorded score for the student
// get a nil-score point carrying the round's exam name.
func SeriesForStudent(studentName string, scores []model.Score, exams []model.Exam, log zerolog.Logger) []SeriesPoint {
	rounds, names := distinctRounds(exams)

	byRound := make(map[int]int, len(scores))
	for _, s := range scores {
		if s.StudentName != studentName {
			continue
		}
		if !knownRound(rounds, s.Round) {
			log.Warn().
				Int("score_id", s.ID).
				Int("round", s.Round).
				Str("student", studentName).
				Msg("Dropping score with no matching exam")
			continue
		}
		byRound[s.Round] = s.Value
	}

	series := make([]SeriesPoint, 0, len(rounds))
	for _, r := range rounds {
		p := SeriesPoint{Round: r, ExamName: names[r]}
		if v, ok := byRound[r]; ok {
			val := v
			p.Score = &val
		}
		series = append(series, p)
	}
	return series
}

// NextRound returns the round to assign to a freshly registered exam:
// 1 + max(existing rounds), or 1 when no exam exists. Gaps left by
// deleted exams are never refilled.
func NextRound(exams []model.Exam) int {
	max := 0
	for _, e := range exams {
		if e.Round > max {
			max = e.Round
		}
	}
	return max + 1
}

// distinctRounds returns the sorted distinct rounds among exams and a
// round → exam-name lookup.
func distinctRounds(exams []model.Exam) ([]int, map[int]string) {
	names := make(map[int]string, len(exams))
	rounds := make([]int, 0, len(exams))
	for _, e := range exams {
		if _, seen := names[e.Round]; !seen {
			rounds = append(rounds, e.Round)
		}
		names[e.Round] = e.Name
	}
	sort.Ints(rounds)
	return rounds, names
}

func knownRound(rounds []int, r int) bool {
	for _, known := range rounds {
		if known == r {
			return true
		}
	}
	return false
}
