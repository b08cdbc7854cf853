package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
)

var (
	ErrCodeInvalid     = errors.New("access code invalid or inactive")
	ErrCodeExhausted   = errors.New("access code redemption limit reached")
	ErrAlreadyEnrolled = errors.New("customer already enrolled")
)

const (
	// No 0/O, 1/I or L: codes are read aloud and typed from paper.
	codeAlphabet    = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codePrefix      = "PHY"
	codeLength      = 6
	codeGenAttempts = 3
)

type accessCodeStore interface {
	Create(ctx context.Context, input repository.CreateAccessCodeInput) (*models.AccessCode, error)
	GetActiveByCode(ctx context.Context, code string) (*models.AccessCode, error)
	ListByProgramID(ctx context.Context, programID int64) ([]models.AccessCode, error)
}

type redemptionStore interface {
	Create(ctx context.Context, input repository.CreateRedemptionInput) (*models.Redemption, error)
	GetLatest(ctx context.Context, programID, customerID int64) (*models.Redemption, error)
	ListByProgramID(ctx context.Context, programID int64) ([]models.Redemption, error)
	CountByCodeID(ctx context.Context, codeID string) (int, error)
	ListCustomerIDsForPhysio(ctx context.Context, physioID int64) ([]int64, error)
}

// txBeginner is the slice of pgxpool.Pool the cascade delete needs.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.User, error)
}

type EnrollmentService struct {
	db             txBeginner
	accessCodeRepo accessCodeStore
	redemptionRepo redemptionStore
	programRepo    programReader
	userRepo       userReader
}

func NewEnrollmentService(
	db *pgxpool.Pool,
	accessCodeRepo *repository.AccessCodeRepository,
	redemptionRepo *repository.RedemptionRepository,
	programRepo *repository.ProgramRepository,
	userRepo *repository.UserRepository,
) *EnrollmentService {
	return &EnrollmentService{
		db:             db,
		accessCodeRepo: accessCodeRepo,
		redemptionRepo: redemptionRepo,
		programRepo:    programRepo,
		userRepo:       userRepo,
	}
}

// CreateAccessCode issues a shareable enrollment code for the program. The
// random code has a small collision chance; the unique constraint catches it
// and the insert is retried with a fresh code before giving up.
func (s *EnrollmentService) CreateAccessCode(
	ctx context.Context,
	physioID int64,
	programID int64,
	maxRedemptions int,
) (*models.AccessCode, error) {
	if maxRedemptions <= 0 {
		return nil, ErrInvalidInput
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.PhysioID != physioID {
		return nil, ErrForbidden
	}

	var lastErr error
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}

		accessCode, err := s.accessCodeRepo.Create(ctx, repository.CreateAccessCodeInput{
			ID:             uuid.New().String(),
			ProgramID:      programID,
			PhysioID:       physioID,
			Code:           code,
			MaxRedemptions: maxRedemptions,
		})
		if err == nil {
			return accessCode, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("generate unique access code: %w", lastErr)
}

// FetchAccessCodes lists the codes minted for the program, newest first.
func (s *EnrollmentService) FetchAccessCodes(
	ctx context.Context,
	physioID int64,
	programID int64,
) ([]models.AccessCode, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.PhysioID != physioID {
		return nil, ErrForbidden
	}

	return s.accessCodeRepo.ListByProgramID(ctx, programID)
}

// RedeemCode enrolls the customer in the code's program and stamps the
// redemption date that anchors their day numbering. Each code admits at most
// max_redemptions distinct customers.
func (s *EnrollmentService) RedeemCode(
	ctx context.Context,
	customerID int64,
	code string,
) (*models.Redemption, error) {
	accessCode, err := s.accessCodeRepo.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeInvalid
		}
		return nil, err
	}

	redeemed, err := s.redemptionRepo.CountByCodeID(ctx, accessCode.ID)
	if err != nil {
		return nil, err
	}
	if redeemed >= accessCode.MaxRedemptions {
		return nil, ErrCodeExhausted
	}

	now := time.Now()
	redemption, err := s.redemptionRepo.Create(ctx, repository.CreateRedemptionInput{
		ProgramID:  accessCode.ProgramID,
		CustomerID: customerID,
		CodeID:     &accessCode.ID,
		RedeemedAt: &now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	return redemption, nil
}

// CreateRedemptions bulk-enrolls patients directly, one redemption each.
// Customers already enrolled are skipped; a concurrent duplicate still hits
// the constraint and surfaces as ErrAlreadyEnrolled rather than a merge.
func (s *EnrollmentService) CreateRedemptions(
	ctx context.Context,
	physioID int64,
	programID int64,
	customerIDs []int64,
) ([]models.Redemption, error) {
	if len(customerIDs) == 0 {
		return nil, ErrInvalidInput
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.PhysioID != physioID {
		return nil, ErrForbidden
	}

	customers, err := s.userRepo.GetByIDs(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	if len(customers) != len(customerIDs) {
		return nil, ErrPatientNotFound
	}
	for _, customer := range customers {
		if customer.Role != "patient" {
			return nil, ErrInvalidInput
		}
	}

	existing, err := s.redemptionRepo.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[int64]struct{}, len(existing))
	for _, redemption := range existing {
		enrolled[redemption.CustomerID] = struct{}{}
	}

	created := make([]models.Redemption, 0, len(customerIDs))
	for _, customerID := range customerIDs {
		if _, ok := enrolled[customerID]; ok {
			continue
		}
		redemption, err := s.redemptionRepo.Create(ctx, repository.CreateRedemptionInput{
			ProgramID:  programID,
			CustomerID: customerID,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrAlreadyEnrolled
			}
			return nil, err
		}
		created = append(created, *redemption)
	}

	return created, nil
}

// FetchPatientsForPhysio lists the distinct patients enrolled across the
// physio's programs.
func (s *EnrollmentService) FetchPatientsForPhysio(ctx context.Context, physioID int64) ([]models.User, error) {
	ids, err := s.redemptionRepo.ListCustomerIDsForPhysio(ctx, physioID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByIDs(ctx, ids)
}

// DeleteProgram removes the program and everything scoped to it in one
// transaction: program exercises, redemptions, access codes, progress
// entries, then the program row. Partial failure rolls everything back so no
// exercise can end up referencing a deleted program.
func (s *EnrollmentService) DeleteProgram(
	ctx context.Context,
	physioID int64,
	programID int64,
) error {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProgramNotFound
		}
		return err
	}
	if program.PhysioID != physioID {
		return ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := repository.NewProgramExerciseRepository(tx).DeleteByProgramID(ctx, programID); err != nil {
		return err
	}
	if err := repository.NewRedemptionRepository(tx).DeleteByProgramID(ctx, programID); err != nil {
		return err
	}
	if err := repository.NewAccessCodeRepository(tx).DeleteByProgramID(ctx, programID); err != nil {
		return err
	}
	if err := repository.NewProgressRepository(tx).DeleteByProgramID(ctx, programID); err != nil {
		return err
	}
	if err := repository.NewProgramRepository(tx).Delete(ctx, programID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", codePrefix, buf), nil
}
