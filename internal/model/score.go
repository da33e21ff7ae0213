package model

import "time"

// Score is one student's integer result in [0,100] for one exam. At most
// one score exists per (exam, student) pair; the ranking engine relies on
// that invariant and the scores table enforces it with a unique index.
//
// Rows are denormalized with the exam's round and name and the student's
// name, matching what the list endpoint returns and what the ranking
// engine consumes.
type Score struct {
	ID          int       `json:"id"`
	ExamID      int       `json:"exam_id"`
	StudentID   int       `json:"student_id"`
	Value       int       `json:"value"`
	Round       int       `json:"round"`
	ExamName    string    `json:"exam_name"`
	StudentName string    `json:"student_name"`
	CreatedAt   time.Time `json:"created_at"`
}
