// Package normalize turns raw, partially reliable API records into
// canonical users and locales. Each canonical field is populated from an
// ordered list of acceptable source field names, with documented defaults
// for anything missing.
package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evolution-crm/evoadmin/internal/identity"
	"github.com/evolution-crm/evoadmin/internal/models"
)

// ValidationError reports a record missing a required field after every
// fallback name was tried. Callers may drop the record, but every drop
// must be counted or logged; dropping silently is disallowed.
type ValidationError struct {
	// Field is the canonical name of the missing field.
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("normalize: required field %q missing", e.Field)
}

// Normalizer converts raw records into canonical ones. The zero value is
// usable; with a logger attached, defensive defaults (unknown role to
// usuario, missing activo to true) are reported instead of applied
// silently.
type Normalizer struct {
	// Log receives diagnostics about coerced or defaulted fields.
	Log *zap.Logger
}

// New returns a Normalizer reporting defaults through log.
func New(log *zap.Logger) *Normalizer {
	return &Normalizer{Log: log}
}

// User normalizes a raw user record.
//
// Field fallbacks: name nombre/name, email email/correo, role role/rol,
// phone telefono/phone, address direccion/address, active
// activo/active/isActive/status=="active", primary locale
// local/primaryLocale, assignments locales/assignedLocales. email is
// required. Serialized canonical names are accepted alongside the backend
// ones so a denormalized user re-normalizes without loss.
func (n *Normalizer) User(raw models.RawRecord) (models.User, error) {
	id, err := identity.Resolve(raw, identity.UserIDFields...)
	if err != nil {
		return models.User{}, err
	}

	email := firstString(raw, "email", "correo")
	if email == "" {
		return models.User{}, &ValidationError{Field: "email"}
	}

	u := models.User{
		Identity: id,
		Name:     firstString(raw, "nombre", "name"),
		Email:    email,
		Phone:    firstString(raw, "telefono", "phone"),
		Address:  firstString(raw, "direccion", "address"),
	}

	rawRole := firstString(raw, "role", "rol")
	role, known := models.ParseRole(rawRole)
	u.Role = role
	if rawRole != "" && !known {
		n.warn("unrecognized role coerced to usuario",
			zap.String("identity", id), zap.String("role", rawRole))
	}

	active, found := resolveActive(raw)
	u.Active = active
	if !found {
		n.debug("missing activo defaulted to true", zap.String("identity", id))
	}

	u.PrimaryLocale, u.PrimaryLocaleName = localeRef(firstValue(raw, "local", "primaryLocale"))
	if name := firstString(raw, "primaryLocaleName"); name != "" {
		u.PrimaryLocaleName = name
	}
	names := anySlice(raw["assignedLocaleNames"])
	for i, v := range anySlice(firstValue(raw, "locales", "assignedLocales")) {
		refID, refName := localeRef(v)
		if refID == "" {
			continue
		}
		if i < len(names) {
			if s, ok := names[i].(string); ok && s != "" {
				refName = s
			}
		}
		u.AssignedLocales = append(u.AssignedLocales, refID)
		u.AssignedLocaleNames = append(u.AssignedLocaleNames, refName)
	}

	return u, nil
}

// Locale normalizes a raw locale record.
//
// Field fallbacks: name nombre/name (required), address direccion/address,
// phone telefono/phone, email, description descripcion/description, active
// as for users. The schedule comes from horario/schedule with
// apertura/opensAt, cierre/closesAt and diasOperacion/dias/daysOfOperation.
func (n *Normalizer) Locale(raw models.RawRecord) (models.Locale, error) {
	id, err := identity.Resolve(raw, identity.LocaleIDFields...)
	if err != nil {
		return models.Locale{}, err
	}

	name := firstString(raw, "nombre", "name")
	if name == "" {
		return models.Locale{}, &ValidationError{Field: "nombre"}
	}

	l := models.Locale{
		Identity:    id,
		Name:        name,
		Address:     firstString(raw, "direccion", "address"),
		Phone:       firstString(raw, "telefono", "phone"),
		Email:       firstString(raw, "email", "correo"),
		Description: firstString(raw, "descripcion", "description"),
	}

	active, found := resolveActive(raw)
	l.Active = active
	if !found {
		n.debug("missing activo defaulted to true", zap.String("identity", id))
	}

	if h, ok := firstValue(raw, "horario", "schedule").(map[string]any); ok {
		s := &models.Schedule{
			OpensAt:  firstString(h, "apertura", "opensAt"),
			ClosesAt: firstString(h, "cierre", "closesAt"),
		}
		for _, d := range anySlice(firstValue(h, "diasOperacion", "dias", "daysOfOperation")) {
			if day, ok := d.(string); ok && day != "" {
				s.DaysOfOperation = append(s.DaysOfOperation, day)
			}
		}
		l.Schedule = s
	}

	return l, nil
}

// resolveActive walks the activo fallback chain. found is false when no
// source field was present and the documented default (true, a deliberate
// bias toward not hiding records) was applied.
func resolveActive(raw models.RawRecord) (active, found bool) {
	for _, f := range []string{"activo", "active", "isActive"} {
		if v, ok := raw[f]; ok && v != nil {
			return asBool(v), true
		}
	}
	if s := firstString(raw, "status", "estado"); s != "" {
		return strings.EqualFold(s, "active") || strings.EqualFold(s, "activo"), true
	}
	return true, false
}

// localeRef normalizes a locale reference that may be a scalar id or an
// object carrying nombre/name plus its own id fields.
func localeRef(v any) (id, name string) {
	switch t := v.(type) {
	case nil:
		return "", ""
	case map[string]any:
		resolved, err := identity.Resolve(t, identity.LocaleIDFields...)
		if err != nil {
			return "", ""
		}
		name = firstString(t, "nombre", "name")
		if name == "" {
			name = resolved
		}
		return resolved, name
	case string:
		c := identity.Canonical(t)
		return c, c
	default:
		return "", ""
	}
}

// asBool coerces a value of unknown type to a boolean. String booleans
// ("true"/"1", case-insensitive) are recognized; anything else falls back
// to truthiness.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		return s == "true" || s == "1"
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return v != nil
	}
}

func firstValue(raw models.RawRecord, fields ...string) any {
	for _, f := range fields {
		if v, ok := raw[f]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(raw models.RawRecord, fields ...string) string {
	for _, f := range fields {
		v, ok := raw[f]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func anySlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func (n *Normalizer) warn(msg string, fields ...zap.Field) {
	if n.Log != nil {
		n.Log.Warn(msg, fields...)
	}
}

func (n *Normalizer) debug(msg string, fields ...zap.Field) {
	if n.Log != nil {
		n.Log.Debug(msg, fields...)
	}
}
