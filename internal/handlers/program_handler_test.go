package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/repository"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type stubProgramService struct {
	createResult    *models.Program
	createErr       error
	addErr          error
	exerciseResult  *models.Exercise
	exerciseErr     error
	exercises       []models.Exercise
	listResult      []models.Program
	listErr         error
	getResult       *models.Program
	getErr          error
	scheduleResult  *models.ProgramSchedule
	scheduleErr     error
	lastPhysioID    int64
	lastPage        int
	lastLimit       int
	lastActorID     int64
	lastRole        string
	lastProgramID   int64
	lastCreateInput services.CreateProgramInput
	lastExerciseIDs []int64
	setActiveErr    error
	lastIsActive    bool
}

func (s *stubProgramService) CreateProgram(_ context.Context, physioID int64, input services.CreateProgramInput) (*models.Program, error) {
	s.lastPhysioID = physioID
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubProgramService) AddExercises(_ context.Context, physioID, programID int64, orderedExerciseIDs []int64) error {
	s.lastPhysioID = physioID
	s.lastProgramID = programID
	s.lastExerciseIDs = orderedExerciseIDs
	return s.addErr
}

func (s *stubProgramService) CreateExercise(_ context.Context, physioID int64, _ repository.CreateExerciseInput) (*models.Exercise, error) {
	s.lastPhysioID = physioID
	return s.exerciseResult, s.exerciseErr
}

func (s *stubProgramService) ListExercises(_ context.Context, physioID int64, page, limit int) ([]models.Exercise, int, error) {
	s.lastPhysioID = physioID
	s.lastPage = page
	s.lastLimit = limit
	return s.exercises, len(s.exercises), nil
}

func (s *stubProgramService) SetProgramActive(_ context.Context, physioID, programID int64, isActive bool) error {
	s.lastPhysioID = physioID
	s.lastProgramID = programID
	s.lastIsActive = isActive
	return s.setActiveErr
}

func (s *stubProgramService) ListPrograms(_ context.Context, actorID int64, role string) ([]models.Program, error) {
	s.lastActorID = actorID
	s.lastRole = role
	return s.listResult, s.listErr
}

func (s *stubProgramService) GetProgram(_ context.Context, actorID int64, role string, programID int64) (*models.Program, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastProgramID = programID
	return s.getResult, s.getErr
}

func (s *stubProgramService) BuildSchedule(_ context.Context, actorID int64, role string, programID int64) (*models.ProgramSchedule, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastProgramID = programID
	return s.scheduleResult, s.scheduleErr
}

type stubProgramDeleter struct {
	err           error
	lastPhysioID  int64
	lastProgramID int64
}

func (s *stubProgramDeleter) DeleteProgram(_ context.Context, physioID, programID int64) error {
	s.lastPhysioID = physioID
	s.lastProgramID = programID
	return s.err
}

func newProgramTestApp(service *stubProgramService, deleter *stubProgramDeleter, role, userID string) *fiber.App {
	handler := NewProgramHandler(service, deleter)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/programs", handler.CreateProgram)
	app.Get("/api/v1/programs", handler.ListPrograms)
	app.Get("/api/v1/programs/:id", handler.GetProgram)
	app.Delete("/api/v1/programs/:id", handler.DeleteProgram)
	app.Post("/api/v1/programs/:id/exercises", handler.AddExercises)
	app.Get("/api/v1/programs/:id/schedule", handler.GetSchedule)
	app.Get("/api/v1/exercises", handler.ListExercises)
	app.Patch("/api/v1/programs/:id/active", handler.SetProgramActive)
	return app
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateProgramForwardsScheduleParameters(t *testing.T) {
	service := &stubProgramService{
		createResult: &models.Program{ID: 5, PhysioID: 7, Title: "Knee rehab"},
	}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/programs", map[string]any{
		"title":             "Knee rehab",
		"duration_days":     7,
		"exercises_per_day": 2,
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastPhysioID != 7 {
		t.Fatalf("expected physio id 7, got %d", service.lastPhysioID)
	}
	if service.lastCreateInput.DurationDays == nil || *service.lastCreateInput.DurationDays != 7 {
		t.Fatalf("expected duration forwarded, got %+v", service.lastCreateInput)
	}
}

func TestCreateProgramRejectsPatientRole(t *testing.T) {
	app := newProgramTestApp(&stubProgramService{}, &stubProgramDeleter{}, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/programs", map[string]any{"title": "Nope"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAddExercisesMapsConflict(t *testing.T) {
	service := &stubProgramService{addErr: services.ErrConflict}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/programs/5/exercises", map[string]any{
		"exercise_ids": []int64{11, 12},
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if service.lastProgramID != 5 || len(service.lastExerciseIDs) != 2 {
		t.Fatalf("unexpected forwarding: %d %v", service.lastProgramID, service.lastExerciseIDs)
	}
}

func TestGetScheduleForwardsActorAndRole(t *testing.T) {
	service := &stubProgramService{
		scheduleResult: &models.ProgramSchedule{
			ProgramID: 5,
			Days: []models.ScheduleDay{
				{DayIndex: 1, Locked: false},
				{DayIndex: 2, Locked: true},
			},
		},
	}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "patient", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs/5/schedule", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastRole != "patient" || service.lastProgramID != 5 {
		t.Fatalf("unexpected forwarding: %d %q %d", service.lastActorID, service.lastRole, service.lastProgramID)
	}

	var payload struct {
		Schedule struct {
			Days []struct {
				DayIndex int  `json:"day_index"`
				Locked   bool `json:"locked"`
			} `json:"days"`
		} `json:"schedule"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Schedule.Days) != 2 || !payload.Schedule.Days[1].Locked {
		t.Fatalf("unexpected schedule payload: %+v", payload.Schedule)
	}
}

func TestGetScheduleMapsForbidden(t *testing.T) {
	service := &stubProgramService{scheduleErr: services.ErrForbidden}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "patient", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs/5/schedule", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSetProgramActiveForwardsToggle(t *testing.T) {
	service := &stubProgramService{}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "physio", "7")

	req := jsonRequest(t, http.MethodPatch, "/api/v1/programs/5/active", map[string]any{
		"is_active": false,
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPhysioID != 7 || service.lastProgramID != 5 || service.lastIsActive {
		t.Fatalf("unexpected forwarding: %d %d %v", service.lastPhysioID, service.lastProgramID, service.lastIsActive)
	}
}

func TestSetProgramActiveRequiresFlag(t *testing.T) {
	app := newProgramTestApp(&stubProgramService{}, &stubProgramDeleter{}, "physio", "7")

	req := jsonRequest(t, http.MethodPatch, "/api/v1/programs/5/active", map[string]any{})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing is_active, got %d", resp.StatusCode)
	}
}

func TestListExercisesPaginatesCatalog(t *testing.T) {
	service := &stubProgramService{
		exercises: []models.Exercise{
			{ID: 1, Title: "Squat"},
			{ID: 2, Title: "Lunge"},
		},
	}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "physio", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exercises?page=2&limit=500", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPhysioID != 7 {
		t.Fatalf("expected physio id 7, got %d", service.lastPhysioID)
	}
	if service.lastPage != 2 || service.lastLimit != maxPageLimit {
		t.Fatalf("expected page 2 limit %d, got page %d limit %d", maxPageLimit, service.lastPage, service.lastLimit)
	}

	var payload struct {
		Exercises  []models.Exercise     `json:"exercises"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Exercises) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(payload.Exercises))
	}
	if payload.Pagination.Page != 2 || payload.Pagination.Limit != maxPageLimit || payload.Pagination.Total != 2 {
		t.Fatalf("unexpected pagination meta: %+v", payload.Pagination)
	}
	if payload.Pagination.TotalPages != 1 {
		t.Fatalf("expected 1 total page, got %d", payload.Pagination.TotalPages)
	}
}

func TestListExercisesDefaultsPageAndLimit(t *testing.T) {
	service := &stubProgramService{}
	app := newProgramTestApp(service, &stubProgramDeleter{}, "physio", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPage != 1 || service.lastLimit != defaultPageLimit {
		t.Fatalf("expected defaults, got page %d limit %d", service.lastPage, service.lastLimit)
	}
}

func TestDeleteProgramForwardsToDeleter(t *testing.T) {
	deleter := &stubProgramDeleter{}
	app := newProgramTestApp(&stubProgramService{}, deleter, "physio", "7")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/programs/5", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if deleter.lastPhysioID != 7 || deleter.lastProgramID != 5 {
		t.Fatalf("unexpected forwarding: %d %d", deleter.lastPhysioID, deleter.lastProgramID)
	}
}

func TestDeleteProgramMapsNotFound(t *testing.T) {
	deleter := &stubProgramDeleter{err: services.ErrProgramNotFound}
	app := newProgramTestApp(&stubProgramService{}, deleter, "physio", "7")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/programs/5", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
