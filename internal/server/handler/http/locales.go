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
)

// LocaleService defines the locale management operations required by
// the HTTP handlers.
type LocaleService interface {
	List(ctx context.Context, includeInactive bool) ([]models.Locale, error)
	Get(ctx context.Context, id string) (*models.Locale, error)
	Create(ctx context.Context, l models.Locale) (*models.Locale, error)
	Update(ctx context.Context, l models.Locale) (*models.Locale, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Locale, error)
	Delete(ctx context.Context, id string) error
	AssignAdmin(ctx context.Context, localeID, userID string) error
	Unassign(ctx context.Context, userID string) error
	AssignedUsers(ctx context.Context, localeID string) ([]models.User, error)
}

// LocaleHandler handles HTTP requests for locale management and the
// admin-assignment workflow.
type LocaleHandler struct {
	Locales  LocaleService
	Validate *validator.Validate
}

// NewLocaleHandler constructs a LocaleHandler with its request validator.
func NewLocaleHandler(locales LocaleService) *LocaleHandler {
	return &LocaleHandler{Locales: locales, Validate: validator.New()}
}

// LocaleRequest represents the JSON payload for locale creation and
// updates.
type LocaleRequest struct {
	Nombre      string `json:"nombre" validate:"required"`
	Direccion   string `json:"direccion"`
	Telefono    string `json:"telefono"`
	Email       string `json:"email" validate:"omitempty,email"`
	Descripcion string `json:"descripcion"`
	Horario     *struct {
		Apertura      string   `json:"apertura"`
		Cierre        string   `json:"cierre"`
		DiasOperacion []string `json:"diasOperacion"`
	} `json:"horario"`
}

func (req *LocaleRequest) toModel(id string) models.Locale {
	l := models.Locale{
		Identity:    id,
		Name:        req.Nombre,
		Address:     req.Direccion,
		Phone:       req.Telefono,
		Email:       req.Email,
		Description: req.Descripcion,
	}
	if req.Horario != nil {
		l.Schedule = &models.Schedule{
			OpensAt:         req.Horario.Apertura,
			ClosesAt:        req.Horario.Cierre,
			DaysOfOperation: req.Horario.DiasOperacion,
		}
	}
	return l
}

// List handles GET /api/locales.
func (h *LocaleHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	locales, err := h.Locales.List(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locales": renderLocales(locales)})
}

// Create handles POST /api/locales.
func (h *LocaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req LocaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	locale, err := h.Locales.Create(r.Context(), req.toModel(""))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create locale")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"locale": renderLocale(*locale)})
}

// Update handles PUT /api/locales/{id}.
func (h *LocaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req LocaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	locale, err := h.Locales.Update(r.Context(), req.toModel(id))
	if err != nil {
		writeLocaleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locale": renderLocale(*locale)})
}

// SetStatus handles PATCH /api/locales/{id}/status.
func (h *LocaleHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Activo == nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	locale, err := h.Locales.SetActive(r.Context(), id, *req.Activo)
	if err != nil {
		writeLocaleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locale": renderLocale(*locale)})
}

// Delete handles DELETE /api/locales/{id}.
func (h *LocaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Locales.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLocaleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// AssignRequest represents the JSON payload of an admin assignment.
// The role flags are accepted for compatibility with older clients;
// assignment never changes the user's role either way.
type AssignRequest struct {
	UserID           string `json:"userId" validate:"required"`
	MantenerRol      bool   `json:"mantenerRol"`
	SoloAsignarLocal bool   `json:"soloAsignarLocal"`
	PreservarRol     string `json:"preservarRol"`
}

// AssignAdmin handles POST /api/locales/{id}/admin.
func (h *LocaleHandler) AssignAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Locales.AssignAdmin(r.Context(), id, req.UserID); err != nil {
		writeLocaleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// Unassign handles POST /api/locales/{id}/unassign.
func (h *LocaleHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.Locales.Unassign(r.Context(), req.UserID); err != nil {
		writeLocaleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// AssignedUsers handles GET /api/locales/{id}/users.
func (h *LocaleHandler) AssignedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Locales.AssignedUsers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLocaleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": renderUsers(users)})
}

func writeLocaleError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "locale not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
