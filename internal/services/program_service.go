package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrProgramNotFound  = errors.New("program not found")
	ErrPatientNotFound  = errors.New("patient not found")
)

type programStore interface {
	Create(ctx context.Context, input repository.CreateProgramInput) (*models.Program, error)
	GetByID(ctx context.Context, programID int64) (*models.Program, error)
	ListByPhysioID(ctx context.Context, physioID int64) ([]models.Program, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]models.Program, error)
	SetActive(ctx context.Context, programID int64, isActive bool) error
}

type programExerciseStore interface {
	AddOrdered(ctx context.Context, programID int64, orderedExerciseIDs []int64, startOrder int) error
	ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramExercise, error)
}

type exerciseStore interface {
	Create(ctx context.Context, input repository.CreateExerciseInput) (*models.Exercise, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error)
	ListByPhysioID(ctx context.Context, physioID int64, limit, offset int) ([]models.Exercise, error)
	CountByPhysioID(ctx context.Context, physioID int64) (int, error)
}

type enrollmentReader interface {
	GetLatest(ctx context.Context, programID, customerID int64) (*models.Redemption, error)
}

type completionReader interface {
	ListCompletedExerciseIDs(ctx context.Context, customerID, programID int64) ([]int64, error)
}

type ProgramService struct {
	programRepo         programStore
	programExerciseRepo programExerciseStore
	exerciseRepo        exerciseStore
	redemptionRepo      enrollmentReader
	progressRepo        completionReader
}

func NewProgramService(
	programRepo *repository.ProgramRepository,
	programExerciseRepo *repository.ProgramExerciseRepository,
	exerciseRepo *repository.ExerciseRepository,
	redemptionRepo *repository.RedemptionRepository,
	progressRepo *repository.ProgressRepository,
) *ProgramService {
	return &ProgramService{
		programRepo:         programRepo,
		programExerciseRepo: programExerciseRepo,
		exerciseRepo:        exerciseRepo,
		redemptionRepo:      redemptionRepo,
		progressRepo:        progressRepo,
	}
}

type CreateProgramInput struct {
	Title           string
	Description     *string
	DurationDays    *int
	ExercisesPerDay *int
}

// CreateProgram stores the schedule parameters as first-class fields. Both
// must be given together and positive, or both omitted; a legacy-encoded
// description is lifted into the structured fields on the way in.
func (s *ProgramService) CreateProgram(
	ctx context.Context,
	physioID int64,
	input CreateProgramInput,
) (*models.Program, error) {
	if physioID <= 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	durationDays := input.DurationDays
	exercisesPerDay := input.ExercisesPerDay
	description := input.Description

	if (durationDays == nil) != (exercisesPerDay == nil) {
		return nil, ErrInvalidInput
	}
	if durationDays != nil && (*durationDays <= 0 || *exercisesPerDay <= 0) {
		return nil, ErrInvalidInput
	}

	if durationDays == nil && description != nil {
		parsedDays, parsedPerDay, cleaned := ParseScheduleMeta(*description)
		if parsedDays != nil {
			durationDays = parsedDays
			exercisesPerDay = parsedPerDay
			description = &cleaned
		}
	}

	return s.programRepo.Create(ctx, repository.CreateProgramInput{
		PhysioID:        physioID,
		Title:           title,
		Description:     description,
		DurationDays:    durationDays,
		ExercisesPerDay: exercisesPerDay,
	})
}

// AddExercises appends the given exercises to the end of the program's
// ordering, continuing after the highest existing sort_order. Callers pass
// the desired order within the batch; an exercise already in the program is
// a caller error surfaced as ErrConflict.
func (s *ProgramService) AddExercises(
	ctx context.Context,
	physioID int64,
	programID int64,
	orderedExerciseIDs []int64,
) error {
	if len(orderedExerciseIDs) == 0 {
		return ErrInvalidInput
	}
	seen := make(map[int64]struct{}, len(orderedExerciseIDs))
	for _, id := range orderedExerciseIDs {
		if id <= 0 {
			return ErrInvalidInput
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidInput
		}
		seen[id] = struct{}{}
	}

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

	exercises, err := s.exerciseRepo.GetByIDs(ctx, orderedExerciseIDs)
	if err != nil {
		return err
	}
	if len(exercises) != len(orderedExerciseIDs) {
		return ErrExerciseNotFound
	}

	existing, err := s.programExerciseRepo.ListByProgramID(ctx, programID)
	if err != nil {
		return err
	}
	startOrder := 1
	for _, pe := range existing {
		if pe.SortOrder >= startOrder {
			startOrder = pe.SortOrder + 1
		}
	}

	if err := s.programExerciseRepo.AddOrdered(ctx, programID, orderedExerciseIDs, startOrder); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// SetProgramActive toggles the program's soft-disable flag. Deactivated
// programs disappear from patient-facing reads but stay visible to the
// owning physio, with all enrollment and progress history intact.
func (s *ProgramService) SetProgramActive(
	ctx context.Context,
	physioID int64,
	programID int64,
	isActive bool,
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

	if err := s.programRepo.SetActive(ctx, programID, isActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProgramNotFound
		}
		return err
	}
	return nil
}

func (s *ProgramService) CreateExercise(
	ctx context.Context,
	physioID int64,
	input repository.CreateExerciseInput,
) (*models.Exercise, error) {
	if physioID <= 0 || input.DurationSeconds < 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	input.PhysioID = physioID
	input.Title = title
	return s.exerciseRepo.Create(ctx, input)
}

// ListExercises pages through the physio's exercise catalog, newest first.
func (s *ProgramService) ListExercises(
	ctx context.Context,
	physioID int64,
	page, limit int,
) ([]models.Exercise, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	total, err := s.exerciseRepo.CountByPhysioID(ctx, physioID)
	if err != nil {
		return nil, 0, err
	}

	exercises, err := s.exerciseRepo.ListByPhysioID(ctx, physioID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	return exercises, total, nil
}

func (s *ProgramService) ListPrograms(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.Program, error) {
	switch role {
	case "physio":
		return s.programRepo.ListByPhysioID(ctx, actorID)
	case "patient":
		return s.programRepo.ListByCustomerID(ctx, actorID)
	default:
		return nil, ErrForbidden
	}
}

func (s *ProgramService) GetProgram(
	ctx context.Context,
	actorID int64,
	role string,
	programID int64,
) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProgramAccess(ctx, actorID, role, program); err != nil {
		return nil, err
	}
	return program, nil
}

// BuildSchedule derives the patient-facing view model: day sections with
// lock flags and per-exercise completion, plus the overall adherence counts.
// Everything is recomputed from fresh catalog and ledger reads; nothing is
// cached between calls.
func (s *ProgramService) BuildSchedule(
	ctx context.Context,
	actorID int64,
	role string,
	programID int64,
) (*models.ProgramSchedule, error) {
	program, err := s.GetProgram(ctx, actorID, role, programID)
	if err != nil {
		return nil, err
	}

	programExercises, err := s.programExerciseRepo.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	orderedIDs := make([]int64, 0, len(programExercises))
	for _, pe := range programExercises {
		orderedIDs = append(orderedIDs, pe.ExerciseID)
	}

	schedule := &models.ProgramSchedule{
		ProgramID:      program.ID,
		Title:          program.Title,
		Days:           []models.ScheduleDay{},
		TotalExercises: len(orderedIDs),
	}

	completed := CompletedSet(nil)
	if role == "patient" {
		completedIDs, err := s.progressRepo.ListCompletedExerciseIDs(ctx, actorID, programID)
		if err != nil {
			return nil, err
		}
		completed = CompletedSet(completedIDs)
		schedule.CompletedCount = len(completedIDs)

		redemption, err := s.redemptionRepo.GetLatest(ctx, programID, actorID)
		if err != nil {
			return nil, err
		}
		anchor := redemption.CreatedAt
		if redemption.RedeemedAt != nil {
			anchor = *redemption.RedeemedAt
		}
		schedule.StartDate = &anchor
	}
	schedule.AdherencePercent = ComputeAdherence(schedule.TotalExercises, schedule.CompletedCount)

	// Legacy programs without schedule parameters have no day grouping:
	// the day list stays empty instead of guessing a default.
	if program.ExercisesPerDay == nil {
		return schedule, nil
	}

	sections := BucketIntoDays(orderedIDs, *program.ExercisesPerDay)

	exercises, err := s.exerciseRepo.GetByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, err
	}
	exerciseByID := make(map[int64]models.Exercise, len(exercises))
	for _, exercise := range exercises {
		exerciseByID[exercise.ID] = exercise
	}

	for _, section := range sections {
		day := models.ScheduleDay{
			DayIndex:  section.DayIndex,
			Locked:    IsDayLocked(section.DayIndex, sections, completed),
			Exercises: make([]models.ScheduleExercise, 0, len(section.ExerciseIDs)),
		}
		for _, exerciseID := range section.ExerciseIDs {
			_, isCompleted := completed[exerciseID]
			scheduleExercise := models.ScheduleExercise{
				ExerciseID: exerciseID,
				Completed:  isCompleted,
			}
			if exercise, ok := exerciseByID[exerciseID]; ok {
				scheduleExercise.Title = exercise.Title
				scheduleExercise.VideoURL = exercise.VideoURL
				scheduleExercise.DurationSeconds = exercise.DurationSeconds
			}
			day.Exercises = append(day.Exercises, scheduleExercise)
		}
		schedule.Days = append(schedule.Days, day)
	}

	return schedule, nil
}

func (s *ProgramService) checkProgramAccess(
	ctx context.Context,
	actorID int64,
	role string,
	program *models.Program,
) error {
	switch role {
	case "physio":
		if program.PhysioID != actorID {
			return ErrForbidden
		}
		return nil
	case "patient":
		if _, err := s.redemptionRepo.GetLatest(ctx, program.ID, actorID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrForbidden
			}
			return err
		}
		return nil
	default:
		return ErrForbidden
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
