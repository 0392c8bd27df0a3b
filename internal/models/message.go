package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageStatus tracks whether the receiver has opened a message.
type MessageStatus string

const (
	MessageDelivered MessageStatus = "delivered"
	MessageSeen      MessageStatus = "seen"
)

// Message is a direct message between two users.
type Message struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	SenderID   uuid.UUID     `db:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID     `db:"receiver_id" json:"receiver_id"`
	Content    string        `db:"content" json:"content"`
	Status     MessageStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	SeenAt     *time.Time    `db:"seen_at" json:"seen_at"`
}

// MessageView is a message enriched with both participants' profiles.
type MessageView struct {
	ID       uuid.UUID     `json:"id"`
	Created  string        `json:"created"`
	Sender   PublicProfile `json:"sender"`
	Receiver PublicProfile `json:"receiver"`
	Content  string        `json:"content"`
	Status   MessageStatus `json:"status"`
	Seen     *string       `json:"seen"`
}

func NewMessageView(m Message, sender, receiver PublicProfile) MessageView {
	return MessageView{
		ID:       m.ID,
		Created:  m.CreatedAt.Format(TimestampLayout),
		Sender:   sender,
		Receiver: receiver,
		Content:  m.Content,
		Status:   m.Status,
		Seen:     formatOptional(m.SeenAt),
	}
}

// Event is pushed to connected websocket clients.
type Event struct {
	Type       string          `json:"type"`
	Friendship *FriendshipView `json:"friendship,omitempty"`
	Message    *MessageView    `json:"message,omitempty"`
}

const (
	EventFriendRequest       = "friend_request"
	EventFriendRequestUpdate = "friend_request_updated"
	EventMessage             = "message"
)
