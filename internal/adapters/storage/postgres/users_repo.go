package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"health-record-sharing/internal/domain/identity"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, role, name, email, health_card, created_at`

func (r *UsersRepo) Create(ctx context.Context, u identity.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		u.ID,
		string(u.Role),
		u.Name,
		u.Email,
		u.HealthCard,
		u.CreatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u identity.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			name = $2,
			email = $3,
			health_card = $4
		WHERE id = $1
	`,
		u.ID,
		u.Name,
		u.Email,
		u.HealthCard,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (identity.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return identity.User{}, identity.ErrNotFound
	}
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UsersRepo) FindByRoleEmail(ctx context.Context, role identity.Role, email string) (identity.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1 AND lower(email) = lower($2)
		ORDER BY seq ASC
		LIMIT 1
	`, string(role), email))
}

func (r *UsersRepo) FindPatientByHealthCard(ctx context.Context, healthCard string) (identity.User, error) {
	if healthCard == "" {
		return identity.User{}, identity.ErrNotFound
	}
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = 'patient' AND health_card = $1
		ORDER BY seq ASC
		LIMIT 1
	`, healthCard))
}

func scanUser(row *sql.Row) (identity.User, error) {
	var u identity.User
	var role string
	if err := row.Scan(&u.ID, &role, &u.Name, &u.Email, &u.HealthCard, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return identity.User{}, identity.ErrNotFound
		}
		return identity.User{}, err
	}
	u.Role = identity.Role(role)
	return u, nil
}
