package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
)

var userCols = []string{"id", "username", "firstname", "lastname", "email", "role", "state", "visibility"}

func TestUserRepoLookup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "alice", "Alice", "Liddell", "alice@example.com", "moderator", "active", "private"))

	u, err := repo.Lookup(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.RoleModerator, u.Role)
	assert.Equal(t, models.VisibilityPrivate, u.Visibility)
}

func TestUserRepoLookupNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`FROM users`).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.Lookup(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoLookupMany(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM users WHERE id = ANY\(\$1::uuid\[\]\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(a.String(), "alice", "Alice", "L", "a@example.com", "user", "active", "public").
			AddRow(b.String(), "bob", "Bob", "B", "b@example.com", "user", "active", "public"))

	users, err := repo.LookupMany(context.Background(), []uuid.UUID{a, b, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "bob", users[b].Username)
}

func TestUserRepoLookupManyEmptySkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	users, err := repo.LookupMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}
