package repository

import (
	"context"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

type CreateAccessCodeInput struct {
	ID             string
	ProgramID      int64
	PhysioID       int64
	Code           string
	MaxRedemptions int
}

type AccessCodeRepository struct {
	db DBTX
}

func NewAccessCodeRepository(db DBTX) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

// Create inserts a generated code. The unique constraint on the code column
// is the collision guard; callers retry on a constraint violation.
func (r *AccessCodeRepository) Create(
	ctx context.Context,
	input CreateAccessCodeInput,
) (*models.AccessCode, error) {
	query := `
		INSERT INTO access_codes (id, program_id, physio_id, code, max_redemptions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, program_id, physio_id, code, max_redemptions, is_active, created_at
	`

	var code models.AccessCode
	err := r.db.QueryRow(
		ctx,
		query,
		input.ID,
		input.ProgramID,
		input.PhysioID,
		input.Code,
		input.MaxRedemptions,
	).Scan(
		&code.ID,
		&code.ProgramID,
		&code.PhysioID,
		&code.Code,
		&code.MaxRedemptions,
		&code.IsActive,
		&code.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *AccessCodeRepository) GetActiveByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	query := `
		SELECT id, program_id, physio_id, code, max_redemptions, is_active, created_at
		FROM access_codes
		WHERE code = $1 AND is_active
	`

	var accessCode models.AccessCode
	err := r.db.QueryRow(ctx, query, code).Scan(
		&accessCode.ID,
		&accessCode.ProgramID,
		&accessCode.PhysioID,
		&accessCode.Code,
		&accessCode.MaxRedemptions,
		&accessCode.IsActive,
		&accessCode.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &accessCode, nil
}

func (r *AccessCodeRepository) ListByProgramID(ctx context.Context, programID int64) ([]models.AccessCode, error) {
	query := `
		SELECT id, program_id, physio_id, code, max_redemptions, is_active, created_at
		FROM access_codes
		WHERE program_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]models.AccessCode, 0)
	for rows.Next() {
		var code models.AccessCode
		if err := rows.Scan(
			&code.ID,
			&code.ProgramID,
			&code.PhysioID,
			&code.Code,
			&code.MaxRedemptions,
			&code.IsActive,
			&code.CreatedAt,
		); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return codes, nil
}

func (r *AccessCodeRepository) DeleteByProgramID(ctx context.Context, programID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM access_codes WHERE program_id = $1`, programID)
	return err
}
