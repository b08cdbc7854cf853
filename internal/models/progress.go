package models

import "time"

type ProgressEntry struct {
	ID             int64     `json:"id"`
	CustomerID     int64     `json:"customer_id"`
	ProgramID      int64     `json:"program_id"`
	ExerciseID     int64     `json:"exercise_id"`
	ProgressDate   time.Time `json:"progress_date"`
	IsCompleted    bool      `json:"is_completed"`
	PainLevel      *int      `json:"pain_level,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	WatchedSeconds int       `json:"watched_seconds"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
