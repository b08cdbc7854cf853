package models

import "time"

type Program struct {
	ID              int64     `json:"id"`
	PhysioID        int64     `json:"physio_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	DurationDays    *int      `json:"duration_days,omitempty"`
	ExercisesPerDay *int      `json:"exercises_per_day,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type ProgramExercise struct {
	ProgramID  int64 `json:"program_id"`
	ExerciseID int64 `json:"exercise_id"`
	SortOrder  int   `json:"sort_order"`
}

type Exercise struct {
	ID              int64     `json:"id"`
	PhysioID        int64     `json:"physio_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	VideoURL        *string   `json:"video_url,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}
