package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Message, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	MarkSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) (models.Message, error)
}

const messageColumns = `id, sender_id, receiver_id, content, status, created_at, seen_at`

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a message and returns the persisted row.
func (r *MessageRepo) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	var stored models.Message
	err := r.db.GetContext(ctx, &stored, `INSERT INTO messages (id, sender_id, receiver_id, content, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+messageColumns,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.Status, msg.CreatedAt)
	return stored, err
}

// GetByID retrieves a single message.
func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListForUser returns messages the user sent or received, oldest first.
func (r *MessageRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE sender_id=$1 OR receiver_id=$1
        ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkSeen flags a delivered message as seen.
func (r *MessageRepo) MarkSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `UPDATE messages SET status=$2, seen_at=$3
        WHERE id=$1 AND status=$4 RETURNING `+messageColumns,
		id, models.MessageSeen, seenAt, models.MessageDelivered)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
