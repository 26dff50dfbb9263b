package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type userRepository struct {
	q DBTX
}

func NewUserRepository(q DBTX) repository.UserRepository {
	return &userRepository{q: q}
}

const userColumns = `id, email, name, role, credit_balance, active, notification_prefs, last_login_at, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var prefs []byte
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreditBalance, &u.Active,
		&prefs, &u.LastLoginAt, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if err := unmarshalPrefs(prefs, &u.NotificationPrefs); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	prefs, err := marshalPrefs(u.NotificationPrefs)
	if err != nil {
		return err
	}
	query := `INSERT INTO users (email, name, role, credit_balance, active, notification_prefs)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_on, updated_on`
	return r.q.QueryRowContext(ctx, query, u.Email, u.Name, u.Role, u.CreditBalance, u.Active, prefs).
		Scan(&u.ID, &u.CreatedOn, &u.UpdatedOn)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("user %d not found", id)
	}
	return u, err
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	prefs, err := marshalPrefs(u.NotificationPrefs)
	if err != nil {
		return err
	}
	query := `UPDATE users SET email = $1, name = $2, role = $3, active = $4,
	          notification_prefs = $5, last_login_at = $6, updated_on = NOW() WHERE id = $7`
	_, err = r.q.ExecContext(ctx, query, u.Email, u.Name, u.Role, u.Active, prefs, u.LastLoginAt, u.ID)
	return err
}

func (r *userRepository) DisableInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE users SET active = FALSE, updated_on = NOW()
	          WHERE active = TRUE AND last_login_at IS NOT NULL AND last_login_at < $1`
	result, err := r.q.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func marshalPrefs(m map[string]bool) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalPrefs(data []byte, dst *map[string]bool) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
