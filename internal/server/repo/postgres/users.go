// Package postgres implements the server's repositories on a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrijs2005/selfplanner/internal/server/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// GetByCredentials returns the user whose email and password match
// exactly, or ErrNotFound.
func (r *UsersRepo) GetByCredentials(ctx context.Context, email, password string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		 FROM users WHERE email = $1 AND password = $2`,
		email, password).Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("error performing sql request: %w", err)
	}
	return u, nil
}

// Upsert stores the account record pushed by a client. The client's id
// wins when present so locally created accounts keep their identity;
// without one a fresh uuid is assigned. A re-push of a known email
// updates the password and keeps the stored id.
func (r *UsersRepo) Upsert(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password
		 RETURNING id`,
		u.ID, u.Email, u.Password).Scan(&u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("error performing sql request: %w", err)
	}
	return u, nil
}

// Exists reports whether an account with the given id is stored.
func (r *UsersRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	return exists, nil
}
