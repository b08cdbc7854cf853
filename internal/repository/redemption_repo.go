package repository

import (
	"context"
	"time"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
)

type CreateRedemptionInput struct {
	ProgramID  int64
	CustomerID int64
	CodeID     *string
	RedeemedAt *time.Time
}

type RedemptionRepository struct {
	db DBTX
}

func NewRedemptionRepository(db DBTX) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// Create inserts one enrollment. The unique constraint on
// (program_id, customer_id) rejects double-enrollment; callers translate the
// violation instead of merging.
func (r *RedemptionRepository) Create(
	ctx context.Context,
	input CreateRedemptionInput,
) (*models.Redemption, error) {
	query := `
		INSERT INTO redemptions (program_id, customer_id, code_id, redeemed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, program_id, customer_id, code_id, redeemed_at, created_at
	`

	var redemption models.Redemption
	err := r.db.QueryRow(
		ctx,
		query,
		input.ProgramID,
		input.CustomerID,
		input.CodeID,
		input.RedeemedAt,
	).Scan(
		&redemption.ID,
		&redemption.ProgramID,
		&redemption.CustomerID,
		&redemption.CodeID,
		&redemption.RedeemedAt,
		&redemption.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &redemption, nil
}

// GetLatest returns the customer's most recent enrollment in the program.
// The engine treats the latest redemption as primary; its redemption date
// anchors all day-offset math for the schedule and the report.
func (r *RedemptionRepository) GetLatest(
	ctx context.Context,
	programID int64,
	customerID int64,
) (*models.Redemption, error) {
	query := `
		SELECT id, program_id, customer_id, code_id, redeemed_at, created_at
		FROM redemptions
		WHERE program_id = $1 AND customer_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var redemption models.Redemption
	err := r.db.QueryRow(ctx, query, programID, customerID).Scan(
		&redemption.ID,
		&redemption.ProgramID,
		&redemption.CustomerID,
		&redemption.CodeID,
		&redemption.RedeemedAt,
		&redemption.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &redemption, nil
}

func (r *RedemptionRepository) ListByProgramID(ctx context.Context, programID int64) ([]models.Redemption, error) {
	query := `
		SELECT id, program_id, customer_id, code_id, redeemed_at, created_at
		FROM redemptions
		WHERE program_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, programID)
}

// CountByCodeID counts distinct customers that redeemed through the code,
// the figure the max-redemptions limit is enforced against.
func (r *RedemptionRepository) CountByCodeID(ctx context.Context, codeID string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT customer_id)
		FROM redemptions
		WHERE code_id = $1
	`
	var count int
	if err := r.db.QueryRow(ctx, query, codeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListCustomerIDsForPhysio returns the distinct customers enrolled in any of
// the physio's programs, used to pre-filter bulk assignment.
func (r *RedemptionRepository) ListCustomerIDsForPhysio(ctx context.Context, physioID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT r.customer_id
		FROM redemptions r
		JOIN programs p ON p.id = r.program_id
		WHERE p.physio_id = $1
		ORDER BY r.customer_id
	`
	rows, err := r.db.Query(ctx, query, physioID)
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

func (r *RedemptionRepository) DeleteByProgramID(ctx context.Context, programID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM redemptions WHERE program_id = $1`, programID)
	return err
}

func (r *RedemptionRepository) list(
	ctx context.Context,
	query string,
	arg any,
) ([]models.Redemption, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	redemptions := make([]models.Redemption, 0)
	for rows.Next() {
		var redemption models.Redemption
		if err := rows.Scan(
			&redemption.ID,
			&redemption.ProgramID,
			&redemption.CustomerID,
			&redemption.CodeID,
			&redemption.RedeemedAt,
			&redemption.CreatedAt,
		); err != nil {
			return nil, err
		}
		redemptions = append(redemptions, redemption)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return redemptions, nil
}
