// Package models defines the canonical data structures for users and locales.
package models

// RawRecord is an untyped record as decoded from the network boundary.
// No invariants hold: any field may be absent, renamed, or carry an
// inconsistent type (booleans encoded as strings, ids nested in objects).
type RawRecord = map[string]any

// Role is the set of valid user roles.
type Role string

const (
	// RoleUser is the least-privileged role. Unrecognized input roles
	// are coerced to it.
	RoleUser Role = "usuario"
	// RoleAdmin manages a single locale.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin manages every locale and all users.
	RoleSuperAdmin Role = "superAdmin"
)

// Kind identifies an entity collection. It keys the persisted cache slots.
type Kind string

const (
	// KindUsers is the users collection.
	KindUsers Kind = "users"
	// KindLocales is the locales collection.
	KindLocales Kind = "locales"
)

// User is the canonical in-memory form of a CRM user.
type User struct {
	// Identity is the canonical identity string. Stable for the lifetime
	// of the record in the store.
	Identity string `json:"identity"`
	// Name is the display name.
	Name string `json:"name"`
	// Email is the login email. Required.
	Email string `json:"email"`
	// Role is one of usuario, admin, superAdmin.
	Role Role `json:"role"`
	// Active reports whether the account is enabled.
	Active bool `json:"active"`
	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty"`
	// Address is an optional postal address.
	Address string `json:"address,omitempty"`
	// AssignedLocales holds the identities of every locale the user is
	// assigned to.
	AssignedLocales []string `json:"assignedLocales,omitempty"`
	// AssignedLocaleNames holds display names parallel to AssignedLocales.
	// Kept for rendering only; never part of identity comparison.
	AssignedLocaleNames []string `json:"assignedLocaleNames,omitempty"`
	// PrimaryLocale is the identity of the user's main locale, if any.
	PrimaryLocale string `json:"primaryLocale,omitempty"`
	// PrimaryLocaleName is the display name of the primary locale.
	PrimaryLocaleName string `json:"primaryLocaleName,omitempty"`
}

// ID returns the canonical identity of the user.
func (u User) ID() string { return u.Identity }

// Schedule describes the opening hours of a locale.
type Schedule struct {
	// OpensAt is the opening time, "HH:MM".
	OpensAt string `json:"opensAt"`
	// ClosesAt is the closing time, "HH:MM".
	ClosesAt string `json:"closesAt"`
	// DaysOfOperation lists the days the locale operates.
	DaysOfOperation []string `json:"daysOfOperation,omitempty"`
}

// Locale is the canonical in-memory form of a business location.
type Locale struct {
	// Identity is the canonical identity string.
	Identity string `json:"identity"`
	// Name is the display name. Required.
	Name string `json:"name"`
	// Address is an optional postal address.
	Address string `json:"address,omitempty"`
	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty"`
	// Email is an optional contact email.
	Email string `json:"email,omitempty"`
	// Description is optional free text.
	Description string `json:"description,omitempty"`
	// Active reports whether the locale is enabled.
	Active bool `json:"active"`
	// Schedule holds opening hours, if the backend provided them.
	Schedule *Schedule `json:"schedule,omitempty"`
}

// ID returns the canonical identity of the locale.
func (l Locale) ID() string { return l.Identity }

// ParseRole maps a raw role string onto the Role enum. Unrecognized
// values map to RoleUser; ok is false so callers can report the coercion.
func ParseRole(s string) (role Role, ok bool) {
	switch s {
	case "usuario", "user":
		return RoleUser, true
	case "admin", "administrador":
		return RoleAdmin, true
	case "superAdmin", "superadmin":
		return RoleSuperAdmin, true
	}
	return RoleUser, false
}
