package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/evolution-crm/evoadmin/internal/models"
)

const localeColumns = `
	id, nombre, direccion, telefono, email, descripcion, activo,
	apertura, cierre, dias_operacion`

// PostgresLocaleRepository implements locale persistence against PostgreSQL.
type PostgresLocaleRepository struct {
	DB *sql.DB
}

// NewPostgresLocaleRepository creates a new PostgresLocaleRepository
// using the provided *sql.DB.
func NewPostgresLocaleRepository(db *sql.DB) *PostgresLocaleRepository {
	return &PostgresLocaleRepository{DB: db}
}

func scanLocale(row interface{ Scan(...any) error }) (models.Locale, error) {
	var (
		l           models.Locale
		direccion   sql.NullString
		telefono    sql.NullString
		email       sql.NullString
		descripcion sql.NullString
		apertura    sql.NullString
		cierre      sql.NullString
		dias        pq.StringArray
	)
	err := row.Scan(&l.Identity, &l.Name, &direccion, &telefono, &email,
		&descripcion, &l.Active, &apertura, &cierre, &dias)
	if err != nil {
		return models.Locale{}, err
	}
	l.Address = direccion.String
	l.Phone = telefono.String
	l.Email = email.String
	l.Description = descripcion.String
	if apertura.Valid || cierre.Valid || len(dias) > 0 {
		l.Schedule = &models.Schedule{
			OpensAt:         apertura.String,
			ClosesAt:        cierre.String,
			DaysOfOperation: []string(dias),
		}
	}
	return l, nil
}

// GetAll fetches every non-deleted locale. Inactive locales are
// included only when includeInactive is set.
func (r *PostgresLocaleRepository) GetAll(ctx context.Context, includeInactive bool) ([]models.Locale, error) {
	query := `SELECT ` + localeColumns + ` FROM locales WHERE deleted = false`
	if !includeInactive {
		query += ` AND activo = true`
	}
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GetAll locales: %w", err)
	}
	defer rows.Close()

	var locales []models.Locale
	for rows.Next() {
		l, err := scanLocale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locale: %w", err)
		}
		locales = append(locales, l)
	}
	return locales, rows.Err()
}

// GetByID fetches a single locale by ID.
func (r *PostgresLocaleRepository) GetByID(ctx context.Context, id string) (*models.Locale, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+localeColumns+` FROM locales WHERE id = $1 AND deleted = false
	`, id)
	l, err := scanLocale(row)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new locale.
func (r *PostgresLocaleRepository) Create(ctx context.Context, l models.Locale) error {
	var apertura, cierre string
	var dias []string
	if l.Schedule != nil {
		apertura = l.Schedule.OpensAt
		cierre = l.Schedule.ClosesAt
		dias = l.Schedule.DaysOfOperation
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO locales (id, nombre, direccion, telefono, email, descripcion, activo, apertura, cierre, dias_operacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, l.Identity, l.Name, l.Address, l.Phone, l.Email, l.Description, l.Active,
		apertura, cierre, pq.Array(dias))
	if err != nil {
		return fmt.Errorf("create locale: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a locale.
func (r *PostgresLocaleRepository) Update(ctx context.Context, l models.Locale) error {
	var apertura, cierre string
	var dias []string
	if l.Schedule != nil {
		apertura = l.Schedule.OpensAt
		cierre = l.Schedule.ClosesAt
		dias = l.Schedule.DaysOfOperation
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE locales SET nombre = $2, direccion = $3, telefono = $4, email = $5,
		       descripcion = $6, apertura = $7, cierre = $8, dias_operacion = $9
		WHERE id = $1 AND deleted = false
	`, l.Identity, l.Name, l.Address, l.Phone, l.Email, l.Description,
		apertura, cierre, pq.Array(dias))
	if err != nil {
		return fmt.Errorf("update locale: %w", err)
	}
	return requireRow(res)
}

// SetActive flips the activo flag of a locale.
func (r *PostgresLocaleRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE locales SET activo = $2 WHERE id = $1 AND deleted = false
	`, id, active)
	if err != nil {
		return fmt.Errorf("set locale active: %w", err)
	}
	return requireRow(res)
}

// Delete soft-deletes a locale and clears assignments pointing at it.
func (r *PostgresLocaleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET local_id = NULL WHERE local_id = $1
	`, id); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE locales SET deleted = true, deleted_at = $2 WHERE id = $1 AND deleted = false
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("delete locale: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UsersByLocale fetches the users assigned to a locale.
func (r *PostgresLocaleRepository) UsersByLocale(ctx context.Context, localeID string) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN locales l ON l.id = u.local_id
		WHERE u.local_id = $1 AND u.deleted = false
	`, localeID)
	if err != nil {
		return nil, fmt.Errorf("UsersByLocale: %w", err)
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
