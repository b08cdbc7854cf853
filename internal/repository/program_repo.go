package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

type CreateProgramInput struct {
	PhysioID        int64
	Title           string
	Description     *string
	DurationDays    *int
	ExercisesPerDay *int
}

type ProgramRepository struct {
	db DBTX
}

func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) Create(
	ctx context.Context,
	input CreateProgramInput,
) (*models.Program, error) {
	query := `
		INSERT INTO programs (physio_id, title, description, duration_days, exercises_per_day)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, physio_id, title, description, duration_days, exercises_per_day, is_active, created_at
	`

	var program models.Program
	err := r.db.QueryRow(
		ctx,
		query,
		input.PhysioID,
		input.Title,
		input.Description,
		input.DurationDays,
		input.ExercisesPerDay,
	).Scan(
		&program.ID,
		&program.PhysioID,
		&program.Title,
		&program.Description,
		&program.DurationDays,
		&program.ExercisesPerDay,
		&program.IsActive,
		&program.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &program, nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, programID int64) (*models.Program, error) {
	query := `
		SELECT id, physio_id, title, description, duration_days, exercises_per_day, is_active, created_at
		FROM programs
		WHERE id = $1
	`

	var program models.Program
	err := r.db.QueryRow(ctx, query, programID).Scan(
		&program.ID,
		&program.PhysioID,
		&program.Title,
		&program.Description,
		&program.DurationDays,
		&program.ExercisesPerDay,
		&program.IsActive,
		&program.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &program, nil
}

func (r *ProgramRepository) ListByPhysioID(ctx context.Context, physioID int64) ([]models.Program, error) {
	query := `
		SELECT id, physio_id, title, description, duration_days, exercises_per_day, is_active, created_at
		FROM programs
		WHERE physio_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, physioID)
}

// ListByCustomerID returns the active programs the customer is enrolled in,
// newest enrollment first.
func (r *ProgramRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]models.Program, error) {
	query := `
		SELECT p.id, p.physio_id, p.title, p.description, p.duration_days, p.exercises_per_day, p.is_active, p.created_at
		FROM programs p
		JOIN redemptions r ON r.program_id = p.id
		WHERE r.customer_id = $1 AND p.is_active
		ORDER BY r.created_at DESC, p.id DESC
	`
	return r.list(ctx, query, customerID)
}

func (r *ProgramRepository) SetActive(ctx context.Context, programID int64, isActive bool) error {
	query := `UPDATE programs SET is_active = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, programID, isActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ProgramRepository) Delete(ctx context.Context, programID int64) error {
	query := `DELETE FROM programs WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, programID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ProgramRepository) list(
	ctx context.Context,
	query string,
	actorID int64,
) ([]models.Program, error) {
	rows, err := r.db.Query(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]models.Program, 0)
	for rows.Next() {
		var program models.Program
		if err := rows.Scan(
			&program.ID,
			&program.PhysioID,
			&program.Title,
			&program.Description,
			&program.DurationDays,
			&program.ExercisesPerDay,
			&program.IsActive,
			&program.CreatedAt,
		); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return programs, nil
}
