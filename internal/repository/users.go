// Package repository provides persistence implementations for the admin
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// userColumns is the select list shared by every user query. The locale
// join resolves the assigned locale's display name in one round trip.
const userColumns = `
	u.id, u.nombre, u.email, u.role, u.activo, u.telefono, u.direccion,
	u.local_id, l.nombre`

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository using
// the provided *sql.DB.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// scanUser reads one user row into the canonical form. Nullable columns
// come back as empty strings.
func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var (
		u          models.User
		role       string
		telefono   sql.NullString
		direccion  sql.NullString
		localID    sql.NullString
		localeName sql.NullString
	)
	err := row.Scan(&u.Identity, &u.Name, &u.Email, &role, &u.Active,
		&telefono, &direccion, &localID, &localeName)
	if err != nil {
		return models.User{}, err
	}
	u.Role, _ = models.ParseRole(role)
	u.Phone = telefono.String
	u.Address = direccion.String
	if localID.Valid {
		u.PrimaryLocale = localID.String
		u.PrimaryLocaleName = localeName.String
		u.AssignedLocales = []string{localID.String}
		if localeName.Valid {
			u.AssignedLocaleNames = []string{localeName.String}
		}
	}
	return u, nil
}

// GetAll fetches every non-deleted user. Inactive users are included
// only when includeInactive is set.
func (r *PostgresUserRepository) GetAll(ctx context.Context, includeInactive bool) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u LEFT JOIN locales l ON l.id = u.local_id
		WHERE u.deleted = false`
	if !includeInactive {
		query += ` AND u.activo = true`
	}
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GetAll users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID fetches a single user by ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN locales l ON l.id = u.local_id
		WHERE u.id = $1 AND u.deleted = false
	`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user and their password hash by login email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var (
		u          models.User
		role       string
		hash       string
		telefono   sql.NullString
		direccion  sql.NullString
		localID    sql.NullString
		localeName sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`, u.password_hash
		FROM users u LEFT JOIN locales l ON l.id = u.local_id
		WHERE u.email = $1 AND u.deleted = false
	`, email).Scan(&u.Identity, &u.Name, &u.Email, &role, &u.Active,
		&telefono, &direccion, &localID, &localeName, &hash)
	if err != nil {
		return nil, "", err
	}
	u.Role, _ = models.ParseRole(role)
	u.Phone = telefono.String
	u.Address = direccion.String
	if localID.Valid {
		u.PrimaryLocale = localID.String
		u.PrimaryLocaleName = localeName.String
	}
	return &u, hash, nil
}

// Create inserts a new user with the given password hash.
func (r *PostgresUserRepository) Create(ctx context.Context, u models.User, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, nombre, email, password_hash, role, activo, telefono, direccion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.Identity, u.Name, u.Email, passwordHash, string(u.Role), u.Active, u.Phone, u.Address)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update rewrites the mutable profile fields of a user. The password
// hash and locale assignment are managed by their own operations.
func (r *PostgresUserRepository) Update(ctx context.Context, u models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET nombre = $2, email = $3, role = $4, telefono = $5, direccion = $6
		WHERE id = $1 AND deleted = false
	`, u.Identity, u.Name, u.Email, string(u.Role), u.Phone, u.Address)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

// SetActive flips the activo flag of a user.
func (r *PostgresUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET activo = $2 WHERE id = $1 AND deleted = false
	`, id, active)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return requireRow(res)
}

// SetLocale assigns a user to a locale. Role is left untouched.
func (r *PostgresUserRepository) SetLocale(ctx context.Context, userID, localeID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET local_id = $2 WHERE id = $1 AND deleted = false
	`, userID, localeID)
	if err != nil {
		return fmt.Errorf("set user locale: %w", err)
	}
	return requireRow(res)
}

// ClearLocale removes a user's locale assignment.
func (r *PostgresUserRepository) ClearLocale(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET local_id = NULL WHERE id = $1 AND deleted = false
	`, userID)
	if err != nil {
		return fmt.Errorf("clear user locale: %w", err)
	}
	return requireRow(res)
}

// UpdatePassword replaces a user's password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1 AND deleted = false
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

// Delete soft-deletes a user. The cleaner removes the row later.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET deleted = true, deleted_at = $2 WHERE id = $1 AND deleted = false
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

// requireRow turns a zero-row update into sql.ErrNoRows so callers can
// distinguish a missing record from a silent no-op.
func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
