package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type stubProgressService struct {
	recordResult   *models.ProgressEntry
	recordErr      error
	fetchResult    []models.ProgressEntry
	fetchErr       error
	lastCustomerID int64
	lastActorID    int64
	lastRole       string
	lastProgramID  int64
	lastInput      services.RecordProgressInput
}

func (s *stubProgressService) RecordProgress(_ context.Context, customerID int64, input services.RecordProgressInput) (*models.ProgressEntry, error) {
	s.lastCustomerID = customerID
	s.lastInput = input
	return s.recordResult, s.recordErr
}

func (s *stubProgressService) FetchProgress(_ context.Context, actorID int64, role string, programID int64, customerID int64) ([]models.ProgressEntry, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastProgramID = programID
	s.lastCustomerID = customerID
	return s.fetchResult, s.fetchErr
}

func newProgressTestApp(service *stubProgressService, role, userID string) *fiber.App {
	handler := NewProgressHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/progress", handler.RecordProgress)
	app.Get("/api/v1/programs/:id/progress", handler.FetchProgress)
	return app
}

func TestRecordProgressParsesDateAndForwards(t *testing.T) {
	service := &stubProgressService{recordResult: &models.ProgressEntry{ID: 1, ExerciseID: 11}}
	app := newProgressTestApp(service, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/progress", map[string]any{
		"program_id":      5,
		"exercise_id":     11,
		"is_completed":    true,
		"watched_seconds": 95,
		"pain_level":      3,
		"progress_date":   "2030-03-04",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastCustomerID != 42 {
		t.Fatalf("expected customer 42, got %d", service.lastCustomerID)
	}
	if service.lastInput.ProgressDate == nil ||
		!service.lastInput.ProgressDate.Equal(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected parsed progress date, got %v", service.lastInput.ProgressDate)
	}
	if service.lastInput.PainLevel == nil || *service.lastInput.PainLevel != 3 {
		t.Fatalf("expected pain level forwarded, got %v", service.lastInput.PainLevel)
	}
}

func TestRecordProgressRejectsBadDate(t *testing.T) {
	app := newProgressTestApp(&stubProgressService{}, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/progress", map[string]any{
		"program_id":    5,
		"exercise_id":   11,
		"progress_date": "04-03-2030",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRecordProgressRejectsPhysioRole(t *testing.T) {
	app := newProgressTestApp(&stubProgressService{}, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/progress", map[string]any{
		"program_id":  5,
		"exercise_id": 11,
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRecordProgressMapsFeedbackLock(t *testing.T) {
	service := &stubProgressService{recordErr: services.ErrFeedbackLocked}
	app := newProgressTestApp(service, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/progress", map[string]any{
		"program_id":  5,
		"exercise_id": 11,
		"pain_level":  4,
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRecordProgressMapsExerciseNotInProgram(t *testing.T) {
	service := &stubProgressService{recordErr: services.ErrExerciseNotInProgram}
	app := newProgressTestApp(service, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/progress", map[string]any{
		"program_id":  5,
		"exercise_id": 99,
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestFetchProgressForwardsCustomerQuery(t *testing.T) {
	service := &stubProgressService{fetchResult: []models.ProgressEntry{{ID: 1}}}
	app := newProgressTestApp(service, "physio", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs/5/progress?customer_id=42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 7 || service.lastRole != "physio" {
		t.Fatalf("unexpected actor forwarding: %d %q", service.lastActorID, service.lastRole)
	}
	if service.lastProgramID != 5 || service.lastCustomerID != 42 {
		t.Fatalf("unexpected target forwarding: %d %d", service.lastProgramID, service.lastCustomerID)
	}
}
