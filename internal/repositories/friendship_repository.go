package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-service/internal/models"
)

var (
	ErrFriendshipNotFound  = errors.New("friendship not found")
	ErrDuplicateFriendship = errors.New("friendship already exists for pair")
)

const uniqueViolation = "23505"

// FriendshipRepository abstracts friendship persistence. Every method runs on
// the executor the repository is bound to, so a repository handed out by
// WithTx keeps all its reads and writes inside that transaction.
type FriendshipRepository interface {
	WithTx(ctx context.Context, fn func(repo FriendshipRepository) error) error
	Create(ctx context.Context, f models.Friendship) error
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (models.Friendship, error)
	FindByPair(ctx context.Context, userA, userB uuid.UUID) (models.Friendship, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.FriendshipStatus, respondedAt *time.Time) (models.Friendship, error)
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error)
	ListAll(ctx context.Context) ([]models.Friendship, error)
}

const friendshipColumns = `id, created_at, requester_id, recipient_id, status, responded_at`

// FriendshipRepo is a sqlx implementation of FriendshipRepository.
type FriendshipRepo struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

// NewFriendshipRepo constructs a FriendshipRepo bound to the connection pool.
func NewFriendshipRepo(db *sqlx.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db, ext: db}
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise. Nested calls reuse the outer transaction.
func (r *FriendshipRepo) WithTx(ctx context.Context, fn func(repo FriendshipRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&FriendshipRepo{db: r.db, ext: tx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFriendship
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Create inserts a new friendship record.
func (r *FriendshipRepo) Create(ctx context.Context, f models.Friendship) error {
	_, err := r.ext.ExecContext(ctx, `INSERT INTO friendships (`+friendshipColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.CreatedAt, f.RequesterID, f.RecipientID, f.Status, f.RespondedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateFriendship
	}
	return err
}

// GetByIDForUpdate fetches a friendship by id and locks the row until the
// surrounding transaction ends.
func (r *FriendshipRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (models.Friendship, error) {
	return r.getOne(ctx, `SELECT `+friendshipColumns+` FROM friendships WHERE id=$1 FOR UPDATE`, id)
}

// FindByPair returns the record for the unordered pair, whoever initiated it.
func (r *FriendshipRepo) FindByPair(ctx context.Context, userA, userB uuid.UUID) (models.Friendship, error) {
	return r.getOne(ctx, `SELECT `+friendshipColumns+` FROM friendships
        WHERE (requester_id=$1 AND recipient_id=$2) OR (requester_id=$2 AND recipient_id=$1)
        LIMIT 1`, userA, userB)
}

// UpdateStatus moves a record to status and returns the updated row.
func (r *FriendshipRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FriendshipStatus, respondedAt *time.Time) (models.Friendship, error) {
	return r.getOne(ctx, `UPDATE friendships SET status=$2, responded_at=$3 WHERE id=$1 RETURNING `+friendshipColumns,
		id, status, respondedAt)
}

// AreFriends checks for an accepted record over the unordered pair.
func (r *FriendshipRepo) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.ext, &exists, `SELECT EXISTS(SELECT 1 FROM friendships
        WHERE ((requester_id=$1 AND recipient_id=$2) OR (requester_id=$2 AND recipient_id=$1))
        AND status=$3)`, userA, userB, models.FriendshipAccepted)
	return exists, err
}

// ListAccepted returns accepted records on either side of userID.
func (r *FriendshipRepo) ListAccepted(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	return r.list(ctx, `SELECT `+friendshipColumns+` FROM friendships
        WHERE (requester_id=$1 OR recipient_id=$1) AND status=$2
        ORDER BY created_at ASC`, userID, models.FriendshipAccepted)
}

// ListByRecipient returns records addressed to recipientID in status.
func (r *FriendshipRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	return r.list(ctx, `SELECT `+friendshipColumns+` FROM friendships
        WHERE recipient_id=$1 AND status=$2
        ORDER BY created_at ASC`, recipientID, status)
}

// ListByRequester returns records sent by requesterID in status.
func (r *FriendshipRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	return r.list(ctx, `SELECT `+friendshipColumns+` FROM friendships
        WHERE requester_id=$1 AND status=$2
        ORDER BY created_at ASC`, requesterID, status)
}

// ListAll returns every record, oldest first.
func (r *FriendshipRepo) ListAll(ctx context.Context) ([]models.Friendship, error) {
	return r.list(ctx, `SELECT `+friendshipColumns+` FROM friendships ORDER BY created_at ASC`)
}

func (r *FriendshipRepo) getOne(ctx context.Context, query string, args ...interface{}) (models.Friendship, error) {
	var f models.Friendship
	err := sqlx.GetContext(ctx, r.ext, &f, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friendship{}, ErrFriendshipNotFound
	}
	return f, err
}

func (r *FriendshipRepo) list(ctx context.Context, query string, args ...interface{}) ([]models.Friendship, error) {
	list := []models.Friendship{}
	if err := sqlx.SelectContext(ctx, r.ext, &list, query, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
