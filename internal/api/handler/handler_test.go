package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
)

type stubProfileService struct {
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn func(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	createFn func(ctx context.Context, input ports.CreateUserInput) (*ports.CreateUserResult, error)
	authFn   func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubProfileService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubProfileService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*ports.CreateUserResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubProfileService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authFn(ctx, email, password)
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestProfileHandler_Get_Success(t *testing.T) {
	stub := &stubProfileService{
		getFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != "42" {
				t.Fatalf("unexpected id %q", id)
			}
			return &domain.User{ID: "42", Name: "Jane", Role: domain.RoleAdmin}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/profile?id=42", "")

	if err := NewProfileHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "42" || resp["name"] != "Jane" || resp["role"] != "Admin" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProfileHandler_Get_MissingID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/profile", "")

	err := NewProfileHandler(&stubProfileService{}).Get(c)
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestProfileHandler_Get_NotFound(t *testing.T) {
	stub := &stubProfileService{
		getFn: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
	}
	c, _ := newContext(http.MethodGet, "/api/profile?id=7", "")

	if err := NewProfileHandler(stub).Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileHandler_Update_PassesSuppliedFields(t *testing.T) {
	stub := &stubProfileService{
		updateFn: func(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
			if id != "42" {
				t.Fatalf("unexpected id %q", id)
			}
			if patch.ID != nil {
				t.Fatalf("id must not travel in the patch")
			}
			if patch.Phone == nil || *patch.Phone != "555" {
				t.Fatalf("expected phone in patch, got %+v", patch)
			}
			if patch.Role == nil || *patch.Role != domain.RoleOperations {
				t.Fatalf("expected role in patch, got %+v", patch)
			}
			if patch.Name != nil || patch.Email != nil {
				t.Fatalf("unsupplied fields must stay nil: %+v", patch)
			}
			return &domain.User{ID: id, Phone: "555", Role: domain.RoleOperations}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/api/profile", `{"id":"42","phone":"555","role":"Operations"}`)

	if err := NewProfileHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProfileHandler_Update_InvalidRole(t *testing.T) {
	stub := &stubProfileService{
		updateFn: func(context.Context, string, domain.UserPatch) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPut, "/api/profile", `{"id":"42","role":"Boss"}`)

	err := NewProfileHandler(stub).Update(c)
	if code := httpCode(t, err); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestProfileHandler_Update_MissingID(t *testing.T) {
	c, _ := newContext(http.MethodPut, "/api/profile", `{"name":"x"}`)

	err := NewProfileHandler(&stubProfileService{}).Update(c)
	if code := httpCode(t, err); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestProfileHandler_Update_BadPayload(t *testing.T) {
	c, _ := newContext(http.MethodPut, "/api/profile", `{"id":`)

	err := NewProfileHandler(&stubProfileService{}).Update(c)
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	stub := &stubProfileService{
		createFn: func(_ context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
			if in.Name != "Jane" || in.Email != "jane@example.com" || in.Role != domain.RoleApprover {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.CreateUserResult{
				User:             domain.User{ID: "1", Name: in.Name, Email: in.Email, Role: in.Role},
				WelcomeEmailSent: true,
			}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/users", `{"name":"Jane","email":"jane@example.com","role":"Approver"}`)

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["welcomeEmailSent"] != true {
		t.Fatalf("expected welcomeEmailSent=true, got %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "jane@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	cases := map[string]string{
		"missing name": `{"email":"jane@example.com"}`,
		"bad email":    `{"name":"Jane","email":"nope"}`,
		"unknown role": `{"name":"Jane","email":"jane@example.com","role":"Boss"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/users", body)
			err := NewUserHandler(&stubProfileService{}).Create(c)
			if code := httpCode(t, err); code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", code)
			}
		})
	}
}

func TestUserHandler_Create_Duplicate(t *testing.T) {
	stub := &stubProfileService{
		createFn: func(context.Context, ports.CreateUserInput) (*ports.CreateUserResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newContext(http.MethodPost, "/api/users", `{"name":"Jane","email":"jane@example.com"}`)

	if err := NewUserHandler(stub).Create(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserHandler_Login(t *testing.T) {
	stub := &stubProfileService{
		authFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if password != "secret" {
				return nil, domain.ErrInvalidCredentials
			}
			return &domain.User{ID: "1", Email: email}, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/login", `{"email":"a@b.com","password":"secret"}`)
	if err := NewUserHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodPost, "/api/login", `{"email":"a@b.com","password":"wrong"}`)
	if err := NewUserHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

type stubMailerStatus bool

func (m stubMailerStatus) Enabled() bool { return bool(m) }

func TestReadinessHandler(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health/ready", "")
	if err := NewReadinessHandler(stubPinger{}, stubMailerStatus(false)).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["smtp"].Status != "disabled" {
		t.Fatalf("expected smtp disabled, got %+v", resp.Dependencies)
	}

	c, rec = newContext(http.MethodGet, "/health/ready", "")
	if err := NewReadinessHandler(stubPinger{err: errors.New("down")}, stubMailerStatus(true)).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	name := "x"
	role := "boss"
	err := v.Validate(&updateProfileRequest{Name: &name, Role: &role})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "id is required") {
		t.Fatalf("expected json field name in message, got %q", msg)
	}
	if !strings.Contains(msg, "role must be one of: Engineer, Approver, Operations, Admin") {
		t.Fatalf("expected role message, got %q", msg)
	}

	ok := "Admin"
	if err := v.Validate(&updateProfileRequest{ID: "1", Role: &ok}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
