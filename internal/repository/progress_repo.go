package repository

import (
	"context"
	"time"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

type UpsertProgressInput struct {
	CustomerID     int64
	ProgramID      int64
	ExerciseID     int64
	ProgressDate   time.Time
	IsCompleted    bool
	PainLevel      *int
	Notes          *string
	WatchedSeconds int
}

type ProgressRepository struct {
	db DBTX
}

func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert writes one dated entry keyed by
// (customer_id, program_id, exercise_id, progress_date). Re-sending the same
// logical write overwrites the prior row, which makes retries safe.
func (r *ProgressRepository) Upsert(
	ctx context.Context,
	input UpsertProgressInput,
) (*models.ProgressEntry, error) {
	query := `
		INSERT INTO progress_entries
			(customer_id, program_id, exercise_id, progress_date, is_completed, pain_level, notes, watched_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id, program_id, exercise_id, progress_date)
		DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			pain_level = EXCLUDED.pain_level,
			notes = EXCLUDED.notes,
			watched_seconds = EXCLUDED.watched_seconds,
			updated_at = now()
		RETURNING id, customer_id, program_id, exercise_id, progress_date, is_completed, pain_level, notes, watched_seconds, created_at, updated_at
	`

	var entry models.ProgressEntry
	err := r.db.QueryRow(
		ctx,
		query,
		input.CustomerID,
		input.ProgramID,
		input.ExerciseID,
		input.ProgressDate,
		input.IsCompleted,
		input.PainLevel,
		input.Notes,
		input.WatchedSeconds,
	).Scan(
		&entry.ID,
		&entry.CustomerID,
		&entry.ProgramID,
		&entry.ExerciseID,
		&entry.ProgressDate,
		&entry.IsCompleted,
		&entry.PainLevel,
		&entry.Notes,
		&entry.WatchedSeconds,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// ListByCustomerAndProgram returns the full dated history, oldest first.
// Entries are never physically deleted outside the program cascade.
func (r *ProgressRepository) ListByCustomerAndProgram(
	ctx context.Context,
	customerID int64,
	programID int64,
) ([]models.ProgressEntry, error) {
	query := `
		SELECT id, customer_id, program_id, exercise_id, progress_date, is_completed, pain_level, notes, watched_seconds, created_at, updated_at
		FROM progress_entries
		WHERE customer_id = $1 AND program_id = $2
		ORDER BY progress_date ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, customerID, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ProgressEntry, 0)
	for rows.Next() {
		var entry models.ProgressEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.CustomerID,
			&entry.ProgramID,
			&entry.ExerciseID,
			&entry.ProgressDate,
			&entry.IsCompleted,
			&entry.PainLevel,
			&entry.Notes,
			&entry.WatchedSeconds,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ListCompletedExerciseIDs is the unlock-gating read: an exercise counts as
// completed when any entry for it is completed, regardless of date. This is
// deliberately a different query from the dated history used by reports.
func (r *ProgressRepository) ListCompletedExerciseIDs(
	ctx context.Context,
	customerID int64,
	programID int64,
) ([]int64, error) {
	query := `
		SELECT DISTINCT exercise_id
		FROM progress_entries
		WHERE customer_id = $1 AND program_id = $2 AND is_completed
		ORDER BY exercise_id
	`
	rows, err := r.db.Query(ctx, query, customerID, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// GetCompletedFeedback returns the most recent completed entry carrying a
// pain level, or pgx.ErrNoRows when the exercise has no feedback yet.
// Feedback is one-shot per exercise once such an entry exists.
func (r *ProgressRepository) GetCompletedFeedback(
	ctx context.Context,
	customerID int64,
	programID int64,
	exerciseID int64,
) (*models.ProgressEntry, error) {
	query := `
		SELECT id, customer_id, program_id, exercise_id, progress_date, is_completed,
			pain_level, notes, watched_seconds, created_at, updated_at
		FROM progress_entries
		WHERE customer_id = $1 AND program_id = $2 AND exercise_id = $3
			AND is_completed AND pain_level IS NOT NULL
		ORDER BY progress_date DESC
		LIMIT 1
	`
	var entry models.ProgressEntry
	err := r.db.QueryRow(ctx, query, customerID, programID, exerciseID).Scan(
		&entry.ID,
		&entry.CustomerID,
		&entry.ProgramID,
		&entry.ExerciseID,
		&entry.ProgressDate,
		&entry.IsCompleted,
		&entry.PainLevel,
		&entry.Notes,
		&entry.WatchedSeconds,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ProgressRepository) DeleteByProgramID(ctx context.Context, programID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM progress_entries WHERE program_id = $1`, programID)
	return err
}
