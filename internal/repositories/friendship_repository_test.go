package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
)

var friendshipCols = []string{"id", "created_at", "requester_id", "recipient_id", "status", "responded_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestFriendshipRepoFindByPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)
	a, b, id := uuid.New(), uuid.New(), uuid.New()
	created := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM friendships\s+WHERE \(requester_id=\$1 AND recipient_id=\$2\) OR \(requester_id=\$2 AND recipient_id=\$1\)`).
		WithArgs(b, a).
		WillReturnRows(sqlmock.NewRows(friendshipCols).AddRow(id.String(), created, a.String(), b.String(), "pending", nil))

	f, err := repo.FindByPair(context.Background(), b, a)
	require.NoError(t, err)
	assert.Equal(t, id, f.ID)
	assert.Equal(t, a, f.RequesterID)
	assert.Equal(t, b, f.RecipientID)
	assert.Equal(t, models.FriendshipPending, f.Status)
	assert.Nil(t, f.RespondedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoFindByPairNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM friendships`).WillReturnRows(sqlmock.NewRows(friendshipCols))

	_, err := repo.FindByPair(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrFriendshipNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoCreateUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)
	f := models.Friendship{ID: uuid.New(), RequesterID: uuid.New(), RecipientID: uuid.New(), Status: models.FriendshipPending, CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO friendships`).
		WithArgs(f.ID, f.CreatedAt, f.RequesterID, f.RecipientID, "pending", nil).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), f)
	assert.ErrorIs(t, err, ErrDuplicateFriendship)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoCreateOtherErrorPassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)

	mock.ExpectExec(`INSERT INTO friendships`).WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), models.Friendship{ID: uuid.New()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateFriendship)
}

func TestFriendshipRepoWithTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)
	id := uuid.New()
	responded := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM friendships WHERE id=\$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(friendshipCols).AddRow(id.String(), responded, uuid.NewString(), uuid.NewString(), "pending", nil))
	mock.ExpectQuery(`UPDATE friendships SET status=\$2, responded_at=\$3 WHERE id=\$1 RETURNING`).
		WithArgs(id, "accepted", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(friendshipCols).AddRow(id.String(), responded, uuid.NewString(), uuid.NewString(), "accepted", responded))
	mock.ExpectCommit()

	var updated models.Friendship
	err := repo.WithTx(context.Background(), func(tx FriendshipRepository) error {
		if _, err := tx.GetByIDForUpdate(context.Background(), id); err != nil {
			return err
		}
		var err error
		updated, err = tx.UpdateStatus(context.Background(), id, models.FriendshipAccepted, &responded)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, updated.Status)
	require.NotNil(t, updated.RespondedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoWithTxRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)
	sentinel := errors.New("abort")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.WithTx(context.Background(), func(tx FriendshipRepository) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoWithTxCommitUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "23505"})

	err := repo.WithTx(context.Background(), func(tx FriendshipRepository) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateFriendship)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoAreFriends(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(a, b, "accepted").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.AreFriends(context.Background(), a, b)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipRepoListByRecipientEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendshipRepo(db)
	me := uuid.New()

	mock.ExpectQuery(`WHERE recipient_id=\$1 AND status=\$2`).
		WithArgs(me, "pending").
		WillReturnRows(sqlmock.NewRows(friendshipCols))

	list, err := repo.ListByRecipient(context.Background(), me, models.FriendshipPending)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
