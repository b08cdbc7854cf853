package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
)

type exerciseReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error)
}

type progressReader interface {
	ListByCustomerAndProgram(ctx context.Context, customerID, programID int64) ([]models.ProgressEntry, error)
	ListCompletedExerciseIDs(ctx context.Context, customerID, programID int64) ([]int64, error)
}

type customerProgramLister interface {
	ListByCustomerID(ctx context.Context, customerID int64) ([]models.Program, error)
}

// AnalyticsService re-derives every report from fresh catalog and ledger
// reads; no derived number is cached between calls, which keeps the unlock
// check, the chart and the clinician report consistent with each other.
type AnalyticsService struct {
	programRepo         programReader
	customerPrograms    customerProgramLister
	programExerciseRepo programExerciseReader
	exerciseRepo        exerciseReader
	progressRepo        progressReader
	redemptionRepo      enrollmentReader
	now                 func() time.Time
}

func NewAnalyticsService(
	programRepo *repository.ProgramRepository,
	programExerciseRepo *repository.ProgramExerciseRepository,
	exerciseRepo *repository.ExerciseRepository,
	progressRepo *repository.ProgressRepository,
	redemptionRepo *repository.RedemptionRepository,
) *AnalyticsService {
	return &AnalyticsService{
		programRepo:         programRepo,
		customerPrograms:    programRepo,
		programExerciseRepo: programExerciseRepo,
		exerciseRepo:        exerciseRepo,
		progressRepo:        progressRepo,
		redemptionRepo:      redemptionRepo,
		now:                 time.Now,
	}
}

// BuildPatientReport assembles the clinician-facing view of one patient's
// run through a program: adherence counts, the day-indexed pain and
// adherence series, session-note rollups and completed/missed sessions.
func (s *AnalyticsService) BuildPatientReport(
	ctx context.Context,
	physioID int64,
	programID int64,
	customerID int64,
) (*models.PatientReport, error) {
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

	redemption, err := s.redemptionRepo.GetLatest(ctx, programID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	anchor := redemption.CreatedAt
	if redemption.RedeemedAt != nil {
		anchor = *redemption.RedeemedAt
	}
	startDate := dateOf(anchor)

	programExercises, err := s.programExerciseRepo.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	orderedIDs := make([]int64, 0, len(programExercises))
	for _, pe := range programExercises {
		orderedIDs = append(orderedIDs, pe.ExerciseID)
	}

	entries, err := s.progressRepo.ListByCustomerAndProgram(ctx, customerID, programID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.progressRepo.ListCompletedExerciseIDs(ctx, customerID, programID)
	if err != nil {
		return nil, err
	}

	exercisesPerDay := 0
	if program.ExercisesPerDay != nil {
		exercisesPerDay = *program.ExercisesPerDay
	}
	sections := BucketIntoDays(orderedIDs, exercisesPerDay)

	// A program without schedule parameters degrades to an empty report
	// window rather than a guessed duration.
	totalDays := len(sections)
	if program.DurationDays != nil {
		totalDays = *program.DurationDays
	}

	totalExercises := len(orderedIDs)
	pain, adherence := BuildDailySeries(entries, startDate, totalDays, func(dayIndex int) int {
		return ExpectedCountForDay(totalExercises, exercisesPerDay, dayIndex)
	})

	exercises, err := s.exerciseRepo.GetByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, err
	}
	titleByExercise := make(map[int64]string, len(exercises))
	for _, exercise := range exercises {
		titleByExercise[exercise.ID] = exercise.Title
	}

	completedSessions, missedSessions := ComputeCompletedSessions(sections, startDate, entries, s.now())

	return &models.PatientReport{
		ProgramID:         programID,
		CustomerID:        customerID,
		StartDate:         startDate,
		TotalExercises:    totalExercises,
		CompletedCount:    len(completedIDs),
		AdherencePercent:  ComputeAdherence(totalExercises, len(completedIDs)),
		CompletedSessions: completedSessions,
		MissedSessions:    missedSessions,
		PainSeries:        pain,
		AdherenceSeries:   adherence,
		SessionNotes:      BuildSessionNotes(entries, startDate, totalDays, titleByExercise),
	}, nil
}

// BuildHomeDashboard computes the patient's trailing 7-day widget from their
// most recent enrollment. Without an enrollment the series are still 7 days
// long, all zero.
func (s *AnalyticsService) BuildHomeDashboard(
	ctx context.Context,
	customerID int64,
) (*models.HomeDashboard, error) {
	programs, err := s.customerPrograms.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	today := dateOf(s.now())
	if len(programs) == 0 {
		dashboard := BuildHomeDashboardSeries(nil, 0, today)
		return &dashboard, nil
	}

	program := programs[0]
	entries, err := s.progressRepo.ListByCustomerAndProgram(ctx, customerID, program.ID)
	if err != nil {
		return nil, err
	}

	exercisesPerDay := 0
	if program.ExercisesPerDay != nil {
		exercisesPerDay = *program.ExercisesPerDay
	}

	dashboard := BuildHomeDashboardSeries(entries, exercisesPerDay, today)
	return &dashboard, nil
}
