package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evolution-crm/evoadmin/internal/models"
	handler "github.com/evolution-crm/evoadmin/internal/server/handler/http"
	"github.com/evolution-crm/evoadmin/internal/service"
)

// fakeAuthService returns preconfigured login results and records
// revoked tokens.
type fakeAuthService struct {
	token string
	user  *models.User
	err   error

	loggedOut []string
	pwErr     error
	pwUserID  string
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Logout(token string) {
	f.loggedOut = append(f.loggedOut, token)
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if f.user == nil {
		return nil, service.ErrInvalidCredentials
	}
	return f.user, nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	f.pwUserID = userID
	return f.pwErr
}

func TestLogin_Success(t *testing.T) {
	fake := &fakeAuthService{
		token: "tok-1",
		user:  &models.User{Identity: "u1", Name: "Ana", Email: "ana@x.com", Role: models.RoleAdmin, Active: true},
	}
	h := &handler.AuthHandler{AuthService: fake}

	b, _ := json.Marshal(map[string]string{"email": "ana@x.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if resp["token"] != "tok-1" {
		t.Errorf("token = %v; want tok-1", resp["token"])
	}
	user, _ := resp["user"].(map[string]any)
	if user["email"] != "ana@x.com" {
		t.Errorf("user = %+v; want email ana@x.com", user)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	h := &handler.AuthHandler{AuthService: &fakeAuthService{err: service.ErrInvalidCredentials}}

	b, _ := json.Marshal(map[string]string{"email": "ana@x.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	h := &handler.AuthHandler{AuthService: &fakeAuthService{err: service.ErrInactiveAccount}}

	b, _ := json.Marshal(map[string]string{"email": "ana@x.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want %d", w.Code, http.StatusForbidden)
	}
}

func TestLogin_BadJSON(t *testing.T) {
	h := &handler.AuthHandler{AuthService: &fakeAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString("not-a-json"))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogout_RevokesPresentedToken(t *testing.T) {
	fake := &fakeAuthService{}
	h := &handler.AuthHandler{AuthService: fake}

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if len(fake.loggedOut) != 1 || fake.loggedOut[0] != "tok-1" {
		t.Errorf("loggedOut = %v; want [tok-1]", fake.loggedOut)
	}
}

func TestChangePassword_OtherUserForbidden(t *testing.T) {
	fake := &fakeAuthService{}
	h := &handler.AuthHandler{AuthService: fake}

	b, _ := json.Marshal(map[string]string{
		"userId":      "someone-else",
		"oldPassword": "old",
		"newPassword": "new-pass",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.ChangePassword(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want %d", w.Code, http.StatusForbidden)
	}
	if fake.pwUserID != "" {
		t.Error("service must not be called for another user's password")
	}
}
