package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type progressApplicationService interface {
	RecordProgress(ctx context.Context, customerID int64, input services.RecordProgressInput) (*models.ProgressEntry, error)
	FetchProgress(ctx context.Context, actorID int64, role string, programID int64, customerID int64) ([]models.ProgressEntry, error)
}

type ProgressHandler struct {
	progressService progressApplicationService
}

func NewProgressHandler(progressService progressApplicationService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type recordProgressRequest struct {
	ProgramID      int64   `json:"program_id"`
	ExerciseID     int64   `json:"exercise_id"`
	IsCompleted    bool    `json:"is_completed"`
	WatchedSeconds int     `json:"watched_seconds"`
	PainLevel      *int    `json:"pain_level"`
	Notes          *string `json:"notes"`
	ProgressDate   *string `json:"progress_date"`
}

// RecordProgress handles POST /api/progress. Patients only; the same
// request replayed for the same date updates the existing entry in place.
func (h *ProgressHandler) RecordProgress(c *fiber.Ctx) error {
	customerID, ok := requireRole(c, "patient")
	if !ok {
		return nil
	}

	var req recordProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.RecordProgressInput{
		ProgramID:      req.ProgramID,
		ExerciseID:     req.ExerciseID,
		IsCompleted:    req.IsCompleted,
		WatchedSeconds: req.WatchedSeconds,
		PainLevel:      req.PainLevel,
		Notes:          req.Notes,
	}
	if req.ProgressDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ProgressDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "progress_date must be YYYY-MM-DD"})
		}
		input.ProgressDate = &parsed
	}

	entry, err := h.progressService.RecordProgress(c.Context(), customerID, input)
	if err != nil {
		return mapProgressError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"progress": entry})
}

// FetchProgress handles GET /api/programs/:id/progress. Patients read their
// own ledger; the owning physio passes ?customer_id= to read a patient's.
func (h *ProgressHandler) FetchProgress(c *fiber.Ctx) error {
	actorID, role, ok := requireAnyRole(c)
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	customerID := int64(c.QueryInt("customer_id", 0))

	entries, err := h.progressService.FetchProgress(c.Context(), actorID, role, programID, customerID)
	if err != nil {
		return mapProgressError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"progress": entries})
}

func mapProgressError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	case errors.Is(err, services.ErrPainOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Pain level must be between 0 and 10"})
	case errors.Is(err, services.ErrExerciseNotInProgram):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Exercise does not belong to program"})
	case errors.Is(err, services.ErrFeedbackLocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Feedback already submitted for this exercise"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrProgramNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
