package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/evolution-crm/evoadmin/internal/models"
	handler "github.com/evolution-crm/evoadmin/internal/server/handler/http"
	"github.com/evolution-crm/evoadmin/internal/service"
)

// fakeUserService records calls and returns preconfigured results.
type fakeUserService struct {
	users []models.User
	err   error

	receivedInactive bool
	createCalled     bool
	receivedInput    service.CreateUserInput
	setActiveID      string
	setActiveValue   bool
}

func (f *fakeUserService) List(ctx context.Context, includeInactive bool) ([]models.User, error) {
	f.receivedInactive = includeInactive
	return f.users, f.err
}

func (f *fakeUserService) Get(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.Identity == id {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserService) Create(ctx context.Context, in service.CreateUserInput) (*models.User, error) {
	f.createCalled = true
	f.receivedInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{Identity: "new-id", Name: in.Name, Email: in.Email, Role: models.RoleUser, Active: true}, nil
}

func (f *fakeUserService) Update(ctx context.Context, u models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &u, nil
}

func (f *fakeUserService) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	f.setActiveID = id
	f.setActiveValue = active
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{Identity: id, Email: "ana@x.com", Active: active}, nil
}

func (f *fakeUserService) Delete(ctx context.Context, id string) error {
	return f.err
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return resp
}

func TestUserList_Envelope(t *testing.T) {
	fake := &fakeUserService{users: []models.User{
		{Identity: "u1", Name: "Ana", Email: "ana@x.com", Role: models.RoleAdmin, Active: true, PrimaryLocale: "l1", PrimaryLocaleName: "Centro"},
		{Identity: "u2", Name: "Bob", Email: "bob@x.com", Role: models.RoleUser, Active: false},
	}}
	h := handler.NewUserHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?includeInactive=true", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if !fake.receivedInactive {
		t.Error("includeInactive flag not passed through")
	}

	resp := decodeEnvelope(t, w.Body)
	if resp["success"] != true {
		t.Error("expected success envelope")
	}
	data, _ := resp["data"].(map[string]any)
	users, _ := data["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("got %d users; want 2", len(users))
	}
	first, _ := users[0].(map[string]any)
	if first["_id"] != "u1" || first["nombre"] != "Ana" || first["activo"] != true {
		t.Errorf("unexpected wire record: %+v", first)
	}
	local, _ := first["local"].(map[string]any)
	if local["_id"] != "l1" {
		t.Errorf("local = %+v; want _id l1", local)
	}
}

func TestUserCreate_ValidationError(t *testing.T) {
	fake := &fakeUserService{}
	h := handler.NewUserHandler(fake)

	// Password below the minimum length.
	b, _ := json.Marshal(map[string]string{
		"nombre":   "Ana",
		"email":    "ana@x.com",
		"password": "short",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
	if fake.createCalled {
		t.Error("service must not be called on validation failure")
	}
}

func TestUserCreate_Success(t *testing.T) {
	fake := &fakeUserService{}
	h := handler.NewUserHandler(fake)

	b, _ := json.Marshal(map[string]string{
		"nombre":   "Ana",
		"email":    "ana@x.com",
		"password": "secret123",
		"role":     "admin",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusCreated)
	}
	if fake.receivedInput.Role != "admin" {
		t.Errorf("role = %q; want admin", fake.receivedInput.Role)
	}

	resp := decodeEnvelope(t, w.Body)
	data, _ := resp["data"].(map[string]any)
	user, _ := data["user"].(map[string]any)
	if user["_id"] != "new-id" {
		t.Errorf("user = %+v; want _id new-id", user)
	}
}

func TestUserSetStatus(t *testing.T) {
	fake := &fakeUserService{}
	h := handler.NewUserHandler(fake)

	b, _ := json.Marshal(map[string]bool{"activo": false})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/u1/status", bytes.NewReader(b))
	req = withURLParam(req, "id", "u1")
	w := httptest.NewRecorder()
	h.SetStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.setActiveID != "u1" || fake.setActiveValue != false {
		t.Errorf("SetActive(%q, %v); want (u1, false)", fake.setActiveID, fake.setActiveValue)
	}
}

func TestUserSetStatus_MissingFlag(t *testing.T) {
	h := handler.NewUserHandler(&fakeUserService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/u1/status", bytes.NewBufferString(`{}`))
	req = withURLParam(req, "id", "u1")
	w := httptest.NewRecorder()
	h.SetStatus(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserSetStatus_NotFound(t *testing.T) {
	h := handler.NewUserHandler(&fakeUserService{err: sql.ErrNoRows})

	b, _ := json.Marshal(map[string]bool{"activo": true})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/nope/status", bytes.NewReader(b))
	req = withURLParam(req, "id", "nope")
	w := httptest.NewRecorder()
	h.SetStatus(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
}
