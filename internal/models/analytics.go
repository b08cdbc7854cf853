package models

import "time"

// SessionNote is the clinician-facing rollup of one day's recorded feedback.
type SessionNote struct {
	Date            time.Time `json:"date"`
	AveragePain     float64   `json:"average_pain"`
	ExerciseTitles  string    `json:"exercise_titles"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
}

type PatientReport struct {
	ProgramID         int64         `json:"program_id"`
	CustomerID        int64         `json:"customer_id"`
	StartDate         time.Time     `json:"start_date"`
	TotalExercises    int           `json:"total_exercises"`
	CompletedCount    int           `json:"completed_count"`
	AdherencePercent  int           `json:"adherence_percent"`
	CompletedSessions int           `json:"completed_sessions"`
	MissedSessions    int           `json:"missed_sessions"`
	PainSeries        []float64     `json:"pain_series"`
	AdherenceSeries   []float64     `json:"adherence_series"`
	SessionNotes      []SessionNote `json:"session_notes"`
}

// HomeDashboard is the patient's fixed 7-day trailing widget, oldest first.
type HomeDashboard struct {
	PainSeries      []float64 `json:"pain_series"`
	AdherenceSeries []float64 `json:"adherence_series"`
}
