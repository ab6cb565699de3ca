// Package http provides the HTTP handlers of the admin API.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// writeJSON writes a success envelope with the given data payload.
func writeJSON(w http.ResponseWriter, status int, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// writeError writes a failure envelope with the given message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// renderUser converts a user to its wire form. Field names follow the
// backend convention, not the in-memory one.
func renderUser(u models.User) map[string]any {
	out := map[string]any{
		"_id":    u.Identity,
		"nombre": u.Name,
		"email":  u.Email,
		"role":   string(u.Role),
		"activo": u.Active,
	}
	if u.Phone != "" {
		out["telefono"] = u.Phone
	}
	if u.Address != "" {
		out["direccion"] = u.Address
	}
	if u.PrimaryLocale != "" {
		out["local"] = map[string]any{
			"_id":    u.PrimaryLocale,
			"nombre": u.PrimaryLocaleName,
		}
	}
	return out
}

// renderLocale converts a locale to its wire form.
func renderLocale(l models.Locale) map[string]any {
	out := map[string]any{
		"_id":    l.Identity,
		"nombre": l.Name,
		"activo": l.Active,
	}
	if l.Address != "" {
		out["direccion"] = l.Address
	}
	if l.Phone != "" {
		out["telefono"] = l.Phone
	}
	if l.Email != "" {
		out["email"] = l.Email
	}
	if l.Description != "" {
		out["descripcion"] = l.Description
	}
	if l.Schedule != nil {
		out["horario"] = map[string]any{
			"apertura":      l.Schedule.OpensAt,
			"cierre":        l.Schedule.ClosesAt,
			"diasOperacion": l.Schedule.DaysOfOperation,
		}
	}
	return out
}

func renderUsers(users []models.User) []map[string]any {
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, renderUser(u))
	}
	return out
}

func renderLocales(locales []models.Locale) []map[string]any {
	out := make([]map[string]any, 0, len(locales))
	for _, l := range locales {
		out = append(out, renderLocale(l))
	}
	return out
}
