package repository

import (
	"context"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

type CreateExerciseInput struct {
	PhysioID        int64
	Title           string
	Description     *string
	VideoURL        *string
	DurationSeconds int
}

type ExerciseRepository struct {
	db DBTX
}

func NewExerciseRepository(db DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) Create(
	ctx context.Context,
	input CreateExerciseInput,
) (*models.Exercise, error) {
	query := `
		INSERT INTO exercises (physio_id, title, description, video_url, duration_seconds)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, physio_id, title, description, video_url, duration_seconds, created_at
	`

	var exercise models.Exercise
	err := r.db.QueryRow(
		ctx,
		query,
		input.PhysioID,
		input.Title,
		input.Description,
		input.VideoURL,
		input.DurationSeconds,
	).Scan(
		&exercise.ID,
		&exercise.PhysioID,
		&exercise.Title,
		&exercise.Description,
		&exercise.VideoURL,
		&exercise.DurationSeconds,
		&exercise.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &exercise, nil
}

func (r *ExerciseRepository) GetByID(ctx context.Context, exerciseID int64) (*models.Exercise, error) {
	query := `
		SELECT id, physio_id, title, description, video_url, duration_seconds, created_at
		FROM exercises
		WHERE id = $1
	`

	var exercise models.Exercise
	err := r.db.QueryRow(ctx, query, exerciseID).Scan(
		&exercise.ID,
		&exercise.PhysioID,
		&exercise.Title,
		&exercise.Description,
		&exercise.VideoURL,
		&exercise.DurationSeconds,
		&exercise.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &exercise, nil
}

// GetByIDs resolves a set of exercises in one round trip. Used to attach
// titles and durations to schedules and reports.
func (r *ExerciseRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error) {
	if len(ids) == 0 {
		return []models.Exercise{}, nil
	}

	query := `
		SELECT id, physio_id, title, description, video_url, duration_seconds, created_at
		FROM exercises
		WHERE id = ANY($1)
		ORDER BY id
	`
	return r.list(ctx, query, ids)
}

func (r *ExerciseRepository) ListByPhysioID(
	ctx context.Context,
	physioID int64,
	limit, offset int,
) ([]models.Exercise, error) {
	query := `
		SELECT id, physio_id, title, description, video_url, duration_seconds, created_at
		FROM exercises
		WHERE physio_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, physioID, limit, offset)
}

func (r *ExerciseRepository) CountByPhysioID(ctx context.Context, physioID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM exercises
		WHERE physio_id = $1
	`

	var total int
	if err := r.db.QueryRow(ctx, query, physioID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ExerciseRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]models.Exercise, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.Exercise, 0)
	for rows.Next() {
		var exercise models.Exercise
		if err := rows.Scan(
			&exercise.ID,
			&exercise.PhysioID,
			&exercise.Title,
			&exercise.Description,
			&exercise.VideoURL,
			&exercise.DurationSeconds,
			&exercise.CreatedAt,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}
