package model

import "time"

// ExamSchedule is an upcoming exam announcement with optional file
// attachments and per-student participation flags. Schedules whose date
// has passed are removed by the daily sweep worker.
type ExamSchedule struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Date         time.Time         `json:"date"`
	Participants []ExamParticipant `json:"participants,omitempty"`
	Files        []ScheduleFile    `json:"files,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ExamParticipant records whether one student plans to take a scheduled
// exam. Rows default to not-participating; a missing row reads as false.
type ExamParticipant struct {
	ID              int    `json:"id"`
	ScheduleID      int    `json:"schedule_id"`
	StudentName     string `json:"student_name"`
	IsParticipating bool   `json:"is_participating"`
}

// ScheduleFile is the metadata row for one uploaded attachment. Path is
// the opaque location of the blob under the upload directory.
type ScheduleFile struct {
	ID          int       `json:"id"`
	ScheduleID  int       `json:"schedule_id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToggleParticipantRequest is the payload for the participation upsert.
// The pointer keeps "false" distinguishable from "field missing".
type ToggleParticipantRequest struct {
	IsParticipating *bool `json:"is_participating" binding:"required"`
}
