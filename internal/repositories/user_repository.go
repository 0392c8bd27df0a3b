package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the read side of the user directory.
type UserRepository interface {
	Lookup(ctx context.Context, id uuid.UUID) (models.User, error)
	LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

const userColumns = `id, username, firstname, lastname, email, role, state, visibility`

// UserRepo is a sqlx-backed user directory.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Lookup fetches a single user.
func (r *UserRepo) Lookup(ctx context.Context, id uuid.UUID) (models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

// LookupMany fetches users in one query. Unknown ids are absent from the map.
func (r *UserRepo) LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	result := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, pq.Array(raw)); err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}
