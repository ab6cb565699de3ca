package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/evolution-crm/evoadmin/internal/models"
	"github.com/evolution-crm/evoadmin/internal/service"
)

// UserService defines the user management operations required by the
// HTTP handlers.
type UserService interface {
	List(ctx context.Context, includeInactive bool) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in service.CreateUserInput) (*models.User, error)
	Update(ctx context.Context, u models.User) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	Users    UserService
	Validate *validator.Validate
}

// NewUserHandler constructs a UserHandler with its request validator.
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{Users: users, Validate: validator.New()}
}

// CreateUserRequest represents the JSON payload for user creation.
type CreateUserRequest struct {
	Nombre    string `json:"nombre" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
}

// UpdateUserRequest represents the JSON payload for a user update.
type UpdateUserRequest struct {
	Nombre    string `json:"nombre" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
}

// List handles GET /api/admin/users. Inactive accounts are included
// only when includeInactive=true is passed.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	users, err := h.Users.List(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": renderUsers(users)})
}

// Create handles POST /api/admin/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Users.Create(r.Context(), service.CreateUserInput{
		Name:     req.Nombre,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Telefono,
		Address:  req.Direccion,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": renderUser(*user)})
}

// Update handles PUT /api/admin/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	role, _ := models.ParseRole(req.Role)
	user, err := h.Users.Update(r.Context(), models.User{
		Identity: id,
		Name:     req.Nombre,
		Email:    req.Email,
		Role:     role,
		Phone:    req.Telefono,
		Address:  req.Direccion,
	})
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": renderUser(*user)})
}

// StatusRequest represents the JSON payload of an activo toggle.
type StatusRequest struct {
	Activo *bool `json:"activo"`
}

// SetStatus handles PATCH /api/admin/users/{id}/status.
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Activo == nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.Users.SetActive(r.Context(), id, *req.Activo)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": renderUser(*user)})
}

// Delete handles DELETE /api/admin/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
