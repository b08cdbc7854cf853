package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/saumya2304singh/Physio-Connect-sub001/internal/models"
	"github.com/saumya2304singh/Physio-Connect-sub001/internal/services"
)

type stubEnrollmentService struct {
	codeResult      *models.AccessCode
	codeErr         error
	codeList        []models.AccessCode
	codeListErr     error
	redeemResult    *models.Redemption
	redeemErr       error
	assignResult    []models.Redemption
	assignErr       error
	patients        []models.User
	patientsErr     error
	lastPhysioID    int64
	lastCustomerID  int64
	lastProgramID   int64
	lastCode        string
	lastMax         int
	lastCustomerIDs []int64
}

func (s *stubEnrollmentService) CreateAccessCode(_ context.Context, physioID, programID int64, maxRedemptions int) (*models.AccessCode, error) {
	s.lastPhysioID = physioID
	s.lastProgramID = programID
	s.lastMax = maxRedemptions
	return s.codeResult, s.codeErr
}

func (s *stubEnrollmentService) FetchAccessCodes(_ context.Context, physioID, programID int64) ([]models.AccessCode, error) {
	s.lastPhysioID = physioID
	s.lastProgramID = programID
	return s.codeList, s.codeListErr
}

func (s *stubEnrollmentService) RedeemCode(_ context.Context, customerID int64, code string) (*models.Redemption, error) {
	s.lastCustomerID = customerID
	s.lastCode = code
	return s.redeemResult, s.redeemErr
}

func (s *stubEnrollmentService) CreateRedemptions(_ context.Context, physioID, programID int64, customerIDs []int64) ([]models.Redemption, error) {
	s.lastPhysioID = physioID
	s.lastProgramID = programID
	s.lastCustomerIDs = customerIDs
	return s.assignResult, s.assignErr
}

func (s *stubEnrollmentService) FetchPatientsForPhysio(_ context.Context, physioID int64) ([]models.User, error) {
	s.lastPhysioID = physioID
	return s.patients, s.patientsErr
}

func newEnrollmentTestApp(service *stubEnrollmentService, role, userID string) *fiber.App {
	handler := NewEnrollmentHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/programs/:id/access-codes", handler.CreateAccessCode)
	app.Get("/api/v1/programs/:id/access-codes", handler.ListAccessCodes)
	app.Post("/api/v1/enrollments/redeem", handler.RedeemCode)
	app.Post("/api/v1/programs/:id/patients", handler.AssignPatients)
	app.Get("/api/v1/patients", handler.ListPatients)
	return app
}

func TestCreateAccessCodeReturnsCode(t *testing.T) {
	service := &stubEnrollmentService{
		codeResult: &models.AccessCode{ID: "code-id", ProgramID: 5, Code: "PHY-K7M2Q9", MaxRedemptions: 3},
	}
	app := newEnrollmentTestApp(service, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/programs/5/access-codes", map[string]any{
		"max_redemptions": 3,
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastPhysioID != 7 || service.lastProgramID != 5 || service.lastMax != 3 {
		t.Fatalf("unexpected forwarding: %d %d %d", service.lastPhysioID, service.lastProgramID, service.lastMax)
	}

	var payload struct {
		AccessCode struct {
			Code string `json:"code"`
		} `json:"access_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.AccessCode.Code != "PHY-K7M2Q9" {
		t.Fatalf("expected code in response, got %q", payload.AccessCode.Code)
	}
}

func TestListAccessCodesForwardsProgramScope(t *testing.T) {
	service := &stubEnrollmentService{
		codeList: []models.AccessCode{
			{ID: "code-id", ProgramID: 5, Code: "PHY-K7M2Q9", MaxRedemptions: 3},
		},
	}
	app := newEnrollmentTestApp(service, "physio", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs/5/access-codes", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPhysioID != 7 || service.lastProgramID != 5 {
		t.Fatalf("unexpected forwarding: %d %d", service.lastPhysioID, service.lastProgramID)
	}

	var payload struct {
		AccessCodes []models.AccessCode `json:"access_codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.AccessCodes) != 1 || payload.AccessCodes[0].Code != "PHY-K7M2Q9" {
		t.Fatalf("unexpected codes payload: %+v", payload.AccessCodes)
	}
}

func TestRedeemCodeRequiresPatientRole(t *testing.T) {
	app := newEnrollmentTestApp(&stubEnrollmentService{}, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/enrollments/redeem", map[string]any{
		"code": "PHY-K7M2Q9",
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

func TestRedeemCodeMapsExhausted(t *testing.T) {
	service := &stubEnrollmentService{redeemErr: services.ErrCodeExhausted}
	app := newEnrollmentTestApp(service, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/enrollments/redeem", map[string]any{
		"code": "PHY-K7M2Q9",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if service.lastCustomerID != 42 || service.lastCode != "PHY-K7M2Q9" {
		t.Fatalf("unexpected forwarding: %d %q", service.lastCustomerID, service.lastCode)
	}
}

func TestRedeemCodeMapsInvalid(t *testing.T) {
	service := &stubEnrollmentService{redeemErr: services.ErrCodeInvalid}
	app := newEnrollmentTestApp(service, "patient", "42")

	req := jsonRequest(t, http.MethodPost, "/api/v1/enrollments/redeem", map[string]any{
		"code": "PHY-ZZZZZZ",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAssignPatientsForwardsIDs(t *testing.T) {
	service := &stubEnrollmentService{
		assignResult: []models.Redemption{{ID: 1, ProgramID: 5, CustomerID: 42}},
	}
	app := newEnrollmentTestApp(service, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/programs/5/patients", map[string]any{
		"customer_ids": []int64{42, 43},
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if len(service.lastCustomerIDs) != 2 {
		t.Fatalf("expected both ids forwarded, got %v", service.lastCustomerIDs)
	}
}

func TestAssignPatientsMapsAlreadyEnrolled(t *testing.T) {
	service := &stubEnrollmentService{assignErr: services.ErrAlreadyEnrolled}
	app := newEnrollmentTestApp(service, "physio", "7")

	req := jsonRequest(t, http.MethodPost, "/api/v1/programs/5/patients", map[string]any{
		"customer_ids": []int64{42},
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

func TestListPatientsReturnsUsersWithoutPasswordHash(t *testing.T) {
	service := &stubEnrollmentService{
		patients: []models.User{{ID: 42, Email: "pat@example.com", Role: "patient", PasswordHash: "secret"}},
	}
	app := newEnrollmentTestApp(service, "physio", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Patients []map[string]any `json:"patients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Patients) != 1 {
		t.Fatalf("expected 1 patient, got %d", len(payload.Patients))
	}
	if _, leaked := payload.Patients[0]["password_hash"]; leaked {
		t.Fatal("expected password hash omitted from the response")
	}
}
