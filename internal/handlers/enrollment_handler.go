package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type enrollmentApplicationService interface {
	CreateAccessCode(ctx context.Context, physioID int64, programID int64, maxRedemptions int) (*models.AccessCode, error)
	FetchAccessCodes(ctx context.Context, physioID int64, programID int64) ([]models.AccessCode, error)
	RedeemCode(ctx context.Context, customerID int64, code string) (*models.Redemption, error)
	CreateRedemptions(ctx context.Context, physioID int64, programID int64, customerIDs []int64) ([]models.Redemption, error)
	FetchPatientsForPhysio(ctx context.Context, physioID int64) ([]models.User, error)
}

type EnrollmentHandler struct {
	enrollmentService enrollmentApplicationService
}

func NewEnrollmentHandler(enrollmentService enrollmentApplicationService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

type createAccessCodeRequest struct {
	MaxRedemptions int `json:"max_redemptions"`
}

// CreateAccessCode handles POST /api/programs/:id/access-codes.
func (h *EnrollmentHandler) CreateAccessCode(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req createAccessCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	accessCode, err := h.enrollmentService.CreateAccessCode(c.Context(), physioID, programID, req.MaxRedemptions)
	if err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"access_code": accessCode})
}

// ListAccessCodes handles GET /api/programs/:id/access-codes.
func (h *EnrollmentHandler) ListAccessCodes(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	accessCodes, err := h.enrollmentService.FetchAccessCodes(c.Context(), physioID, programID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"access_codes": accessCodes})
}

type redeemCodeRequest struct {
	Code string `json:"code"`
}

// RedeemCode handles POST /api/enrollments/redeem for the calling patient.
func (h *EnrollmentHandler) RedeemCode(c *fiber.Ctx) error {
	customerID, ok := requireRole(c, "patient")
	if !ok {
		return nil
	}

	var req redeemCodeRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Access code is required"})
	}

	redemption, err := h.enrollmentService.RedeemCode(c.Context(), customerID, req.Code)
	if err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"redemption": redemption})
}

type assignPatientsRequest struct {
	CustomerIDs []int64 `json:"customer_ids"`
}

// AssignPatients handles POST /api/programs/:id/patients, enrolling the
// listed patients directly without a code.
func (h *EnrollmentHandler) AssignPatients(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req assignPatientsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	redemptions, err := h.enrollmentService.CreateRedemptions(c.Context(), physioID, programID, req.CustomerIDs)
	if err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"redemptions": redemptions})
}

// ListPatients handles GET /api/patients for the calling physio.
func (h *EnrollmentHandler) ListPatients(c *fiber.Ctx) error {
	physioID, ok := requireRole(c, "physio")
	if !ok {
		return nil
	}

	patients, err := h.enrollmentService.FetchPatientsForPhysio(c.Context(), physioID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"patients": patients})
}

func mapEnrollmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrProgramNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	case errors.Is(err, services.ErrPatientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Patient not found"})
	case errors.Is(err, services.ErrCodeInvalid):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Access code not found or inactive"})
	case errors.Is(err, services.ErrCodeExhausted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Access code has no redemptions left"})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Patient is already enrolled in this program"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
