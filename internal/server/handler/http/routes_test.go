package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/evolution-crm/evoadmin/internal/models"
	handler "github.com/evolution-crm/evoadmin/internal/server/handler/http"
)

type staticTokens struct{ userID string }

func (s staticTokens) Validate(token string) (string, bool) {
	if token == "good-token" {
		return s.userID, true
	}
	return "", false
}

// fakeLocaleService serves one locale and records assignments.
type fakeLocaleService struct {
	locales []models.Locale

	assignedLocale string
	assignedUser   string
}

func (f *fakeLocaleService) List(ctx context.Context, includeInactive bool) ([]models.Locale, error) {
	return f.locales, nil
}

func (f *fakeLocaleService) Get(ctx context.Context, id string) (*models.Locale, error) {
	for _, l := range f.locales {
		if l.Identity == id {
			return &l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLocaleService) Create(ctx context.Context, l models.Locale) (*models.Locale, error) {
	l.Identity = "new-locale"
	return &l, nil
}

func (f *fakeLocaleService) Update(ctx context.Context, l models.Locale) (*models.Locale, error) {
	return &l, nil
}

func (f *fakeLocaleService) SetActive(ctx context.Context, id string, active bool) (*models.Locale, error) {
	return &models.Locale{Identity: id, Name: "Centro", Active: active}, nil
}

func (f *fakeLocaleService) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeLocaleService) AssignAdmin(ctx context.Context, localeID, userID string) error {
	f.assignedLocale = localeID
	f.assignedUser = userID
	return nil
}

func (f *fakeLocaleService) Unassign(ctx context.Context, userID string) error { return nil }

func (f *fakeLocaleService) AssignedUsers(ctx context.Context, localeID string) ([]models.User, error) {
	return nil, nil
}

func newTestRouter(users *fakeUserService, locales *fakeLocaleService) http.Handler {
	auth := &fakeAuthService{
		token: "tok-1",
		user:  &models.User{Identity: "u1", Email: "ana@x.com", Active: true},
	}
	return handler.NewRouter(
		&handler.AuthHandler{AuthService: auth},
		handler.NewUserHandler(users),
		handler.NewLocaleHandler(locales),
		staticTokens{userID: "u1"},
		zap.NewNop(),
	)
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	router := newTestRouter(&fakeUserService{}, &fakeLocaleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_LoginWithoutToken(t *testing.T) {
	router := newTestRouter(&fakeUserService{}, &fakeLocaleService{})

	b, _ := json.Marshal(map[string]string{"email": "ana@x.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if resp["token"] != "tok-1" {
		t.Errorf("token = %v; want tok-1", resp["token"])
	}
}

func TestRouter_UserListWithToken(t *testing.T) {
	users := &fakeUserService{users: []models.User{
		{Identity: "u1", Name: "Ana", Email: "ana@x.com", Role: models.RoleAdmin, Active: true},
	}}
	router := newTestRouter(users, &fakeLocaleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?includeInactive=true", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	resp := decodeEnvelope(t, w.Body)
	data, _ := resp["data"].(map[string]any)
	if _, ok := data["users"].([]any); !ok {
		t.Errorf("response data = %+v; want users list", data)
	}
	if !users.receivedInactive {
		t.Error("includeInactive flag not passed through")
	}
}

func TestRouter_AssignAdmin(t *testing.T) {
	locales := &fakeLocaleService{locales: []models.Locale{{Identity: "l1", Name: "Centro", Active: true}}}
	router := newTestRouter(&fakeUserService{}, locales)

	b, _ := json.Marshal(map[string]any{
		"userId":           "u2",
		"mantenerRol":      true,
		"soloAsignarLocal": true,
		"preservarRol":     "admin",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/locales/l1/admin", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if locales.assignedLocale != "l1" || locales.assignedUser != "u2" {
		t.Errorf("assigned (%q, %q); want (l1, u2)", locales.assignedLocale, locales.assignedUser)
	}
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	router := newTestRouter(&fakeUserService{}, &fakeLocaleService{})

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnsupportedMediaType)
	}
}
