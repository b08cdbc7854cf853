package repository

import (
	"context"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

type ProgramExerciseRepository struct {
	db DBTX
}

func NewProgramExerciseRepository(db DBTX) *ProgramExerciseRepository {
	return &ProgramExerciseRepository{db: db}
}

// AddOrdered inserts the exercises in list order starting at startOrder.
// Duplicate (program, exercise) pairs or reused sort orders violate unique
// constraints and surface as a pgconn error, never a silent merge.
func (r *ProgramExerciseRepository) AddOrdered(
	ctx context.Context,
	programID int64,
	orderedExerciseIDs []int64,
	startOrder int,
) error {
	query := `
		INSERT INTO program_exercises (program_id, exercise_id, sort_order)
		VALUES ($1, $2, $3)
	`
	for i, exerciseID := range orderedExerciseIDs {
		if _, err := r.db.Exec(ctx, query, programID, exerciseID, startOrder+i); err != nil {
			return err
		}
	}
	return nil
}

// ListByProgramID returns the program's exercises in ascending sort order,
// the single global ordering every day-bucketing read depends on.
func (r *ProgramExerciseRepository) ListByProgramID(
	ctx context.Context,
	programID int64,
) ([]models.ProgramExercise, error) {
	query := `
		SELECT program_id, exercise_id, sort_order
		FROM program_exercises
		WHERE program_id = $1
		ORDER BY sort_order ASC
	`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.ProgramExercise, 0)
	for rows.Next() {
		var pe models.ProgramExercise
		if err := rows.Scan(&pe.ProgramID, &pe.ExerciseID, &pe.SortOrder); err != nil {
			return nil, err
		}
		exercises = append(exercises, pe)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *ProgramExerciseRepository) DeleteByProgramID(ctx context.Context, programID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM program_exercises WHERE program_id = $1`, programID)
	return err
}
