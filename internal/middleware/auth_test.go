package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeValidator struct {
	userID string
	ok     bool
	seen   string
}

func (f *fakeValidator) Validate(token string) (string, bool) {
	f.seen = token
	return f.userID, f.ok
}

func TestBearerAuth_NoToken(t *testing.T) {
	mw := BearerAuth(&fakeValidator{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	mw := BearerAuth(&fakeValidator{ok: false})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestBearerAuth_ValidToken(t *testing.T) {
	v := &fakeValidator{userID: "u1", ok: true}
	mw := BearerAuth(v)

	var gotUser string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer tok-abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if v.seen != "tok-abc" {
		t.Errorf("token = %q; want %q", v.seen, "tok-abc")
	}
	if gotUser != "u1" {
		t.Errorf("user = %q; want %q", gotUser, "u1")
	}
}

func TestBearerAuth_LoginExempt(t *testing.T) {
	mw := BearerAuth(&fakeValidator{})
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("login endpoint should bypass token validation")
	}
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserIDFromContext(req.Context()); got != "" {
		t.Errorf("user = %q; want empty", got)
	}
}
