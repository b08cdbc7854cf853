package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type analyticsApplicationService interface {
	BuildPatientReport(ctx context.Context, physioID int64, programID int64, customerID int64) (*models.PatientReport, error)
	BuildHomeDashboard(ctx context.Context, customerID int64) (*models.HomeDashboard, error)
}

type AnalyticsHandler struct {
	analyticsService analyticsApplicationService
}

func NewAnalyticsHandler(analyticsService analyticsApplicationService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetPatientReport handles GET /api/programs/:id/report?customer_id=.
// Physio only; the program must belong to the caller.
func (h *AnalyticsHandler) GetPatientReport(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	customerID := int64(c.QueryInt("customer_id", 0))
	if customerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "customer_id is required"})
	}

	report, err := h.analyticsService.BuildPatientReport(c.Context(), physioID, programID, customerID)
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"report": report})
}

// GetHomeDashboard handles GET /api/dashboard/home for the calling patient.
func (h *AnalyticsHandler) GetHomeDashboard(c *fiber.Ctx) error {
	customerID, ok := requireRole(c, "patient")
	if !ok {
		return nil
	}

	dashboard, err := h.analyticsService.BuildHomeDashboard(c.Context(), customerID)
	if err != nil {
		return mapAnalyticsError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"dashboard": dashboard})
}

func mapAnalyticsError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrProgramNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	case errors.Is(err, services.ErrPatientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Patient is not enrolled in this program"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
