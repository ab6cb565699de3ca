package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/evolution-crm/evoadmin/internal/client/cache"
	"github.com/evolution-crm/evoadmin/internal/models"
	"github.com/evolution-crm/evoadmin/internal/normalize"
	"github.com/evolution-crm/evoadmin/internal/reconcile"
	"github.com/evolution-crm/evoadmin/internal/unwrap"
)

// Codec describes the per-kind behavior of a Store: endpoints, unwrap
// hints, and the normalization bridge.
type Codec[T reconcile.Keyed] struct {
	// Kind keys the cache slot.
	Kind models.Kind
	// ListPath is the collection fetch endpoint.
	ListPath string
	// CreatePath is the creation endpoint.
	CreatePath string
	// ItemPath builds the endpoint of one record.
	ItemPath func(id string) string
	// StatusPath builds the activo-toggle endpoint of one record.
	StatusPath func(id string) string
	// KeyHints are the expected list keys for response unwrapping.
	KeyHints []string
	// Normalize converts a raw record into the canonical form.
	Normalize func(models.RawRecord) (T, error)
	// Denormalize renders a canonical record with canonical field names,
	// used to overlay partial updates.
	Denormalize func(T) models.RawRecord
	// IsActive reads the active flag.
	IsActive func(T) bool
	// ApplyActive returns a copy with the active flag set.
	ApplyActive func(T, bool) T
	// SearchText lists the strings the view search matches against.
	SearchText func(T) []string
}

// extractUsers unwraps a user list from an assignment-endpoint response.
func extractUsers(body any) ([]models.RawRecord, string) {
	return unwrap.ExtractRecordList(body, []string{"users", "usuarios"})
}

// denormalize renders any record as a RawRecord via its JSON form.
func denormalize[T any](rec T) models.RawRecord {
	buf, err := json.Marshal(rec)
	if err != nil {
		return models.RawRecord{}
	}
	var raw models.RawRecord
	if err := json.Unmarshal(buf, &raw); err != nil {
		return models.RawRecord{}
	}
	return raw
}

// UserCodec builds the users codec over n.
func UserCodec(n *normalize.Normalizer) Codec[models.User] {
	return Codec[models.User]{
		Kind: models.KindUsers,
		// includeInactive asks the backend not to filter disabled users;
		// reconciliation still protects against backends that do anyway.
		ListPath:   "/api/admin/users?includeInactive=true",
		CreatePath: "/api/admin/users",
		ItemPath:   func(id string) string { return "/api/admin/users/" + id },
		StatusPath: func(id string) string { return "/api/admin/users/" + id + "/status" },
		KeyHints:   []string{"users", "usuarios"},
		Normalize:  n.User,
		Denormalize: func(u models.User) models.RawRecord {
			return denormalize(u)
		},
		IsActive: func(u models.User) bool { return u.Active },
		ApplyActive: func(u models.User, active bool) models.User {
			u.Active = active
			return u
		},
		SearchText: func(u models.User) []string {
			return []string{u.Name, u.Email, u.PrimaryLocaleName}
		},
	}
}

// LocaleCodec builds the locales codec over n.
func LocaleCodec(n *normalize.Normalizer) Codec[models.Locale] {
	return Codec[models.Locale]{
		Kind:       models.KindLocales,
		ListPath:   "/api/locales",
		CreatePath: "/api/locales",
		ItemPath:   func(id string) string { return "/api/locales/" + id },
		StatusPath: func(id string) string { return "/api/locales/" + id + "/status" },
		KeyHints:   []string{"locales"},
		Normalize:  n.Locale,
		Denormalize: func(l models.Locale) models.RawRecord {
			return denormalize(l)
		},
		IsActive: func(l models.Locale) bool { return l.Active },
		ApplyActive: func(l models.Locale, active bool) models.Locale {
			l.Active = active
			return l
		},
		SearchText: func(l models.Locale) []string {
			return []string{l.Name, l.Address, l.Description}
		},
	}
}

// Users builds the users store.
func Users(api API, c *cache.File, n *normalize.Normalizer, log *zap.Logger) *Store[models.User] {
	return NewStore(UserCodec(n), api, c, log)
}

// LocaleStore wraps the locales store with the admin-assignment workflow.
type LocaleStore struct {
	*Store[models.Locale]
	api API
	n   *normalize.Normalizer
	log *zap.Logger
}

// Locales builds the locales store.
func Locales(api API, c *cache.File, n *normalize.Normalizer, log *zap.Logger) *LocaleStore {
	return &LocaleStore{
		Store: NewStore(LocaleCodec(n), api, c, log),
		api:   api,
		n:     n,
		log:   log,
	}
}

// AssignAdmin assigns a user to a locale without changing the user's
// role. The payload spells the intent out redundantly because backend
// versions differ in which flag they honor.
func (s *LocaleStore) AssignAdmin(ctx context.Context, localeID, userID string, keepRole models.Role) error {
	_, target, err := s.find(localeID)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"userId":           userID,
		"mantenerRol":      true,
		"soloAsignarLocal": true,
	}
	if keepRole != "" {
		payload["preservarRol"] = string(keepRole)
	}
	_, err = s.api.Post(ctx, s.codec.ItemPath(target.ID())+"/admin", payload)
	return err
}

// UnassignUser removes a user from a locale.
func (s *LocaleStore) UnassignUser(ctx context.Context, localeID, userID string) error {
	_, target, err := s.find(localeID)
	if err != nil {
		return err
	}
	_, err = s.api.Post(ctx, s.codec.ItemPath(target.ID())+"/unassign", map[string]any{"userId": userID})
	return err
}

// AssignedUsers fetches and normalizes the users assigned to a locale.
// Unnormalizable records are skipped and counted in dropped.
func (s *LocaleStore) AssignedUsers(ctx context.Context, localeID string) (users []models.User, dropped int, err error) {
	_, target, err := s.find(localeID)
	if err != nil {
		return nil, 0, err
	}
	body, err := s.api.Get(ctx, s.codec.ItemPath(target.ID())+"/users")
	if err != nil {
		return nil, 0, err
	}
	raws, reason := extractUsers(body)
	if len(raws) == 0 && reason != "" {
		s.log.Info("no assigned users in response", zap.String("reason", reason))
	}
	for _, raw := range raws {
		u, err := s.n.User(raw)
		if err != nil {
			dropped++
			s.log.Warn("assigned user dropped", zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	return users, dropped, nil
}
