package model

import "time"

// Exam is one administration of the mock-exam series. Round numbers order
// exams and are unique; they are assigned as current-max+1 at creation,
// so gaps can exist after deletions and are never refilled.
type Exam struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreEntry is one student's result submitted as part of an exam
// registration. Students left blank in the form are simply absent from
// the slice, never recorded as zero.
type ScoreEntry struct {
	StudentID int `json:"student_id" binding:"required"`
	Value     int `json:"value" binding:"min=0,max=100"`
}

// RegisterExamRequest is the payload for registering a new exam together
// with its scores. The round is assigned server-side.
type RegisterExamRequest struct {
	Name   string       `json:"name" binding:"required,min=1,max=255"`
	Scores []ScoreEntry `json:"scores" binding:"required,min=1,dive"`
}
