package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
)

var (
	ErrPainOutOfRange       = errors.New("pain level out of range")
	ErrExerciseNotInProgram = errors.New("exercise not in program")
	ErrFeedbackLocked       = errors.New("feedback already recorded")
)

type progressStore interface {
	Upsert(ctx context.Context, input repository.UpsertProgressInput) (*models.ProgressEntry, error)
	ListByCustomerAndProgram(ctx context.Context, customerID, programID int64) ([]models.ProgressEntry, error)
	ListCompletedExerciseIDs(ctx context.Context, customerID, programID int64) ([]int64, error)
	GetCompletedFeedback(ctx context.Context, customerID, programID, exerciseID int64) (*models.ProgressEntry, error)
}

type programReader interface {
	GetByID(ctx context.Context, programID int64) (*models.Program, error)
}

type programExerciseReader interface {
	ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramExercise, error)
}

// ProgressEvent is pushed to the live hub whenever a patient records
// progress, keyed by the owning physio.
type ProgressEvent struct {
	PhysioID   int64     `json:"physio_id"`
	ProgramID  int64     `json:"program_id"`
	CustomerID int64     `json:"customer_id"`
	ExerciseID int64     `json:"exercise_id"`
	Completed  bool      `json:"completed"`
	Timestamp  time.Time `json:"timestamp"`
}

type ProgressPublisher interface {
	PublishProgress(event ProgressEvent)
}

type ProgressService struct {
	progressRepo        progressStore
	programRepo         programReader
	programExerciseRepo programExerciseReader
	redemptionRepo      enrollmentReader
	publisher           ProgressPublisher
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	programRepo *repository.ProgramRepository,
	programExerciseRepo *repository.ProgramExerciseRepository,
	redemptionRepo *repository.RedemptionRepository,
	publisher ProgressPublisher,
) *ProgressService {
	return &ProgressService{
		progressRepo:        progressRepo,
		programRepo:         programRepo,
		programExerciseRepo: programExerciseRepo,
		redemptionRepo:      redemptionRepo,
		publisher:           publisher,
	}
}

type RecordProgressInput struct {
	ProgramID      int64
	ExerciseID     int64
	IsCompleted    bool
	WatchedSeconds int
	PainLevel      *int
	Notes          *string
	ProgressDate   *time.Time
}

// RecordProgress upserts one dated ledger entry. Writing the same logical
// entry twice leaves the ledger in the same state as writing it once, so the
// call is safe to retry after a timeout. Validation happens before any
// write: pain must be 0..10 and the exercise must belong to the program.
func (s *ProgressService) RecordProgress(
	ctx context.Context,
	customerID int64,
	input RecordProgressInput,
) (*models.ProgressEntry, error) {
	if customerID <= 0 || input.ProgramID <= 0 || input.ExerciseID <= 0 || input.WatchedSeconds < 0 {
		return nil, ErrInvalidInput
	}
	if input.PainLevel != nil && (*input.PainLevel < 0 || *input.PainLevel > 10) {
		return nil, ErrPainOutOfRange
	}

	program, err := s.programRepo.GetByID(ctx, input.ProgramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	if _, err := s.redemptionRepo.GetLatest(ctx, input.ProgramID, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	programExercises, err := s.programExerciseRepo.ListByProgramID(ctx, input.ProgramID)
	if err != nil {
		return nil, err
	}
	inProgram := false
	for _, pe := range programExercises {
		if pe.ExerciseID == input.ExerciseID {
			inProgram = true
			break
		}
	}
	if !inProgram {
		return nil, ErrExerciseNotInProgram
	}

	progressDate := dateOf(time.Now())
	if input.ProgressDate != nil {
		progressDate = dateOf(*input.ProgressDate)
	}

	// Feedback is one-shot per exercise: once a completed entry carries a
	// pain level, later pain or notes edits are refused. A retry of the
	// exact write that set the lock is not an edit, so it succeeds with the
	// stored entry unchanged.
	if input.PainLevel != nil || input.Notes != nil {
		locked, err := s.progressRepo.GetCompletedFeedback(ctx, customerID, input.ProgramID, input.ExerciseID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if locked != nil {
			if isFeedbackReplay(locked, input, progressDate) {
				return locked, nil
			}
			return nil, ErrFeedbackLocked
		}
	}

	entry, err := s.progressRepo.Upsert(ctx, repository.UpsertProgressInput{
		CustomerID:     customerID,
		ProgramID:      input.ProgramID,
		ExerciseID:     input.ExerciseID,
		ProgressDate:   progressDate,
		IsCompleted:    input.IsCompleted,
		PainLevel:      input.PainLevel,
		Notes:          input.Notes,
		WatchedSeconds: input.WatchedSeconds,
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishProgress(ProgressEvent{
			PhysioID:   program.PhysioID,
			ProgramID:  program.ID,
			CustomerID: customerID,
			ExerciseID: input.ExerciseID,
			Completed:  input.IsCompleted,
			Timestamp:  time.Now(),
		})
	}

	return entry, nil
}

// isFeedbackReplay reports whether the incoming write is byte-for-byte the
// entry that set the feedback lock, field by field on the same date.
func isFeedbackReplay(locked *models.ProgressEntry, input RecordProgressInput, progressDate time.Time) bool {
	if !sameDay(locked.ProgressDate, progressDate) {
		return false
	}
	if locked.IsCompleted != input.IsCompleted || locked.WatchedSeconds != input.WatchedSeconds {
		return false
	}
	return equalIntPtr(locked.PainLevel, input.PainLevel) && equalStrPtr(locked.Notes, input.Notes)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FetchProgress returns the full dated history for one patient and program.
// Patients read their own ledger; the owning physio may read any enrolled
// patient's.
func (s *ProgressService) FetchProgress(
	ctx context.Context,
	actorID int64,
	role string,
	programID int64,
	customerID int64,
) ([]models.ProgressEntry, error) {
	switch role {
	case "patient":
		if customerID != 0 && customerID != actorID {
			return nil, ErrForbidden
		}
		customerID = actorID
	case "physio":
		if customerID <= 0 {
			return nil, ErrInvalidInput
		}
		program, err := s.programRepo.GetByID(ctx, programID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProgramNotFound
			}
			return nil, err
		}
		if program.PhysioID != actorID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	return s.progressRepo.ListByCustomerAndProgram(ctx, customerID, programID)
}
