package models

import "time"

// DaySection is one day's slice of a program's ordered exercise list.
// Day indices are 1-based and contiguous.
type DaySection struct {
	DayIndex    int     `json:"day_index"`
	ExerciseIDs []int64 `json:"exercise_ids"`
}

type ScheduleExercise struct {
	ExerciseID      int64   `json:"exercise_id"`
	Title           string  `json:"title"`
	VideoURL        *string `json:"video_url,omitempty"`
	DurationSeconds int     `json:"duration_seconds"`
	Completed       bool    `json:"completed"`
}

type ScheduleDay struct {
	DayIndex  int                `json:"day_index"`
	Locked    bool               `json:"locked"`
	Exercises []ScheduleExercise `json:"exercises"`
}

type ProgramSchedule struct {
	ProgramID        int64         `json:"program_id"`
	Title            string        `json:"title"`
	StartDate        *time.Time    `json:"start_date,omitempty"`
	Days             []ScheduleDay `json:"days"`
	CompletedCount   int           `json:"completed_count"`
	TotalExercises   int           `json:"total_exercises"`
	AdherencePercent int           `json:"adherence_percent"`
}
