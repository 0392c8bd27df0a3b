package models

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the display format of timestamps in API responses.
const TimestampLayout = "15:04:05 02-01-2006"

// FriendshipStatus is the state of a friendship record.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipSeen     FriendshipStatus = "seen"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s FriendshipStatus) Terminal() bool {
	return s == FriendshipAccepted || s == FriendshipRejected
}

// Open reports whether the recipient may still respond.
func (s FriendshipStatus) Open() bool {
	return s == FriendshipPending || s == FriendshipSeen
}

// Friendship is the single relation between an unordered pair of users.
type Friendship struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	RequesterID uuid.UUID        `db:"requester_id" json:"requester_id"`
	RecipientID uuid.UUID        `db:"recipient_id" json:"recipient_id"`
	Status      FriendshipStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at"`
}

// Involves reports whether userID is one side of the pair.
func (f Friendship) Involves(userID uuid.UUID) bool {
	return f.RequesterID == userID || f.RecipientID == userID
}

// OtherParty returns the side of the pair that is not userID.
func (f Friendship) OtherParty(userID uuid.UUID) uuid.UUID {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

// FriendshipView is a friendship enriched with both participants' profiles.
type FriendshipView struct {
	ID        uuid.UUID        `json:"id"`
	Created   string           `json:"created"`
	Sender    PublicProfile    `json:"sender"`
	Receiver  PublicProfile    `json:"receiver"`
	Status    FriendshipStatus `json:"status"`
	Responded *string          `json:"responded"`
}

// NewFriendshipView builds a view from a record and the resolved profiles.
func NewFriendshipView(f Friendship, sender, receiver PublicProfile) FriendshipView {
	return FriendshipView{
		ID:        f.ID,
		Created:   f.CreatedAt.Format(TimestampLayout),
		Sender:    sender,
		Receiver:  receiver,
		Status:    f.Status,
		Responded: formatOptional(f.RespondedAt),
	}
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(TimestampLayout)
	return &s
}
