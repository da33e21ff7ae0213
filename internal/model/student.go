package model

import "time"

// Student is one member of the fixed roster being tracked. The roster is
// small (four names in the current deployment) but nothing downstream
// depends on its size.
type Student struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
