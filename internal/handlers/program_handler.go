package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type programApplicationService interface {
	CreateProgram(ctx context.Context, physioID int64, input services.CreateProgramInput) (*models.Program, error)
	AddExercises(ctx context.Context, physioID, programID int64, orderedExerciseIDs []int64) error
	CreateExercise(ctx context.Context, physioID int64, input repository.CreateExerciseInput) (*models.Exercise, error)
	ListExercises(ctx context.Context, physioID int64, page, limit int) ([]models.Exercise, int, error)
	ListPrograms(ctx context.Context, actorID int64, role string) ([]models.Program, error)
	GetProgram(ctx context.Context, actorID int64, role string, programID int64) (*models.Program, error)
	SetProgramActive(ctx context.Context, physioID int64, programID int64, isActive bool) error
	BuildSchedule(ctx context.Context, actorID int64, role string, programID int64) (*models.ProgramSchedule, error)
}

type programDeleter interface {
	DeleteProgram(ctx context.Context, physioID, programID int64) error
}

type ProgramHandler struct {
	service programApplicationService
	deleter programDeleter
}

func NewProgramHandler(service programApplicationService, deleter programDeleter) *ProgramHandler {
	return &ProgramHandler{service: service, deleter: deleter}
}

type createProgramRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	DurationDays    *int    `json:"duration_days"`
	ExercisesPerDay *int    `json:"exercises_per_day"`
}

type addExercisesRequest struct {
	ExerciseIDs []int64 `json:"exercise_ids"`
}

type createExerciseRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	VideoURL        *string `json:"video_url"`
	DurationSeconds int     `json:"duration_seconds"`
}

func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	var req createProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	program, err := h.service.CreateProgram(c.Context(), physioID, services.CreateProgramInput{
		Title:           req.Title,
		Description:     req.Description,
		DurationDays:    req.DurationDays,
		ExercisesPerDay: req.ExercisesPerDay,
	})
	if err != nil {
		return mapProgramError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) AddExercises(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req addExercisesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.ExerciseIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "exercise_ids is required"})
	}

	if err := h.service.AddExercises(c.Context(), physioID, programID, req.ExerciseIDs); err != nil {
		return mapProgramError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": len(req.ExerciseIDs)})
}

func (h *ProgramHandler) CreateExercise(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	var req createExerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if req.DurationSeconds < 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "duration_seconds must not be negative"})
	}

	exercise, err := h.service.CreateExercise(c.Context(), physioID, repository.CreateExerciseInput{
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return mapProgramError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"exercise": exercise})
}

func (h *ProgramHandler) ListExercises(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	exercises, total, err := h.service.ListExercises(c.Context(), physioID, page, limit)
	if err != nil {
		return mapProgramError(c, err)
	}

	return c.JSON(fiber.Map{
		"exercises":  exercises,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	actorID, role, ok := requireAnyRole(c)
	if !ok {
		return nil
	}

	programs, err := h.service.ListPrograms(c.Context(), actorID, role)
	if err != nil {
		return mapProgramError(c, err)
	}

	return c.JSON(fiber.Map{"programs": programs})
}

func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	actorID, role, ok := requireAnyRole(c)
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	program, err := h.service.GetProgram(c.Context(), actorID, role, programID)
	if err != nil {
		return mapProgramError(c, err)
	}

	return c.JSON(fiber.Map{"program": program})
}

type setProgramActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetProgramActive handles PATCH /api/programs/:id/active, the soft
// enable/disable toggle for the owning physio.
func (h *ProgramHandler) SetProgramActive(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req setProgramActiveRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "is_active is required"})
	}

	if err := h.service.SetProgramActive(c.Context(), physioID, programID, *req.IsActive); err != nil {
		return mapProgramError(c, err)
	}

	return c.JSON(fiber.Map{"program_id": programID, "is_active": *req.IsActive})
}

// GetSchedule returns the day sections with lock state and per-exercise
// completion, the view the patient's program screen renders directly.
func (h *ProgramHandler) GetSchedule(c *fiber.Ctx) error {
	actorID, role, ok := requireAnyRole(c)
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	schedule, err := h.service.BuildSchedule(c.Context(), actorID, role, programID)
	if err != nil {
		return mapProgramError(c, err)
	}

	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	if err := h.deleter.DeleteProgram(c.Context(), physioID, programID); err != nil {
		return mapProgramError(c, err)
	}

	return c.JSON(fiber.Map{"deleted": true})
}

func mapProgramError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "Exercise already assigned to program"})
	case errors.Is(err, services.ErrProgramNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	case errors.Is(err, services.ErrExerciseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exercise not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process program request"})
	}
}

// requireRole writes the failure response itself; callers return nil when
// ok is false.
func requireRole(c *fiber.Ctx, role string) (actorID int64, ok bool) {
	actual, isString := c.Locals("role").(string)
	if !isString || actual != role {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, false
	}
	actorID, err := parseActorID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, false
	}
	return actorID, true
}

func requireAnyRole(c *fiber.Ctx) (actorID int64, role string, ok bool) {
	role, isString := c.Locals("role").(string)
	if !isString || (role != "physio" && role != "patient") {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, "", false
	}
	actorID, err := parseActorID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, "", false
	}
	return actorID, role, true
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
