package messaging

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"social-service/internal/apperrors"
	"social-service/internal/logger"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

const (
	MaxContentLength = 1000
	EventSent        = "message.sent"
)

// FriendshipChecker answers the friendship predicate the gate relies on.
type FriendshipChecker interface {
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, eventName string, payload any)
}

type Notifier interface {
	NotifyUser(userID uuid.UUID, event models.Event)
}

// Service sends and reads direct messages. A message may only be sent to a
// friend or to a user whose profile is public.
type Service struct {
	messages   repositories.MessageRepository
	users      repositories.UserRepository
	friendship FriendshipChecker
	events     EventEmitter
	notifier   Notifier
	policy     *bluemonday.Policy
	now        func() time.Time
}

func NewService(messages repositories.MessageRepository, users repositories.UserRepository, friendship FriendshipChecker, events EventEmitter, notifier Notifier) *Service {
	return &Service{
		messages:   messages,
		users:      users,
		friendship: friendship,
		events:     events,
		notifier:   notifier,
		policy:     bluemonday.StrictPolicy(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CanMessage is the messaging gate.
func (s *Service) CanMessage(ctx context.Context, senderID uuid.UUID, receiver models.User) (bool, error) {
	friends, err := s.friendship.AreFriends(ctx, senderID, receiver.ID)
	if err != nil {
		return false, err
	}
	switch {
	case friends:
		observability.IncMessageGate("friends")
		return true, nil
	case receiver.IsPublic():
		observability.IncMessageGate("public")
		return true, nil
	default:
		observability.IncMessageGate("denied")
		return false, nil
	}
}

// Send delivers content from senderID to receiverID.
func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (models.MessageView, error) {
	if senderID == uuid.Nil {
		return models.MessageView{}, apperrors.Unauthenticated("authentication required")
	}
	if senderID == receiverID {
		return models.MessageView{}, apperrors.InvalidRequest("cannot message yourself")
	}

	receiver, err := s.users.Lookup(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.MessageView{}, apperrors.NotFound("user not found")
		}
		return models.MessageView{}, s.internal(err, "failed to look up receiver")
	}

	allowed, err := s.CanMessage(ctx, senderID, receiver)
	if err != nil {
		return models.MessageView{}, err
	}
	if !allowed {
		return models.MessageView{}, apperrors.InvalidRequest("not friends with this user")
	}

	clean, err := s.sanitize(content)
	if err != nil {
		return models.MessageView{}, err
	}

	stored, err := s.messages.Create(ctx, models.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    clean,
		Status:     models.MessageDelivered,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return models.MessageView{}, s.internal(err, "failed to store message")
	}
	logger.Info("message sent", "message_id", stored.ID, "sender_id", senderID, "receiver_id", receiverID)

	view, err := s.enrich(ctx, stored)
	if err != nil {
		return models.MessageView{}, err
	}
	if s.events != nil {
		s.events.Emit(ctx, EventSent, view)
	}
	if s.notifier != nil {
		s.notifier.NotifyUser(receiverID, models.Event{Type: models.EventMessage, Message: &view})
	}
	return view, nil
}

// List returns every message callerID sent or received, oldest first.
func (s *Service) List(ctx context.Context, callerID uuid.UUID) ([]models.MessageView, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	msgs, err := s.messages.ListForUser(ctx, callerID)
	if err != nil {
		return nil, s.internal(err, "failed to load messages")
	}

	views := make([]models.MessageView, 0, len(msgs))
	if len(msgs) == 0 {
		return views, nil
	}

	seen := map[uuid.UUID]struct{}{}
	ids := []uuid.UUID{}
	for _, m := range msgs {
		for _, id := range []uuid.UUID{m.SenderID, m.ReceiverID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	users, err := s.users.LookupMany(ctx, ids)
	if err != nil {
		return nil, s.internal(err, "failed to load user profiles")
	}
	for _, m := range msgs {
		views = append(views, models.NewMessageView(m, profileOf(users, m.SenderID), profileOf(users, m.ReceiverID)))
	}
	return views, nil
}

// MarkSeen flags a received message as seen. Repeating it is a no-op.
func (s *Service) MarkSeen(ctx context.Context, callerID, messageID uuid.UUID) (models.MessageView, error) {
	if callerID == uuid.Nil {
		return models.MessageView{}, apperrors.Unauthenticated("authentication required")
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.MessageView{}, apperrors.NotFound("message not found")
		}
		return models.MessageView{}, s.internal(err, "failed to load message")
	}
	if msg.ReceiverID != callerID {
		return models.MessageView{}, apperrors.Forbidden("only the receiver can mark a message as seen")
	}

	if msg.Status == models.MessageDelivered {
		updated, err := s.messages.MarkSeen(ctx, msg.ID, s.now())
		switch {
		case err == nil:
			msg = updated
		case errors.Is(err, repositories.ErrMessageNotFound):
			// marked seen concurrently
			if msg, err = s.messages.GetByID(ctx, messageID); err != nil {
				return models.MessageView{}, s.internal(err, "failed to reload message")
			}
		default:
			return models.MessageView{}, s.internal(err, "failed to mark message as seen")
		}
	}
	return s.enrich(ctx, msg)
}

func (s *Service) sanitize(content string) (string, error) {
	// the strict policy drops tags but entity-escapes text; keep plain text
	clean := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.ReplaceAll(content, "\x00", ""))))
	if clean == "" {
		return "", apperrors.InvalidRequest("message content is required")
	}
	if utf8.RuneCountInString(clean) > MaxContentLength {
		return "", apperrors.InvalidRequest("message content is too long")
	}
	return clean, nil
}

func (s *Service) enrich(ctx context.Context, m models.Message) (models.MessageView, error) {
	users, err := s.users.LookupMany(ctx, []uuid.UUID{m.SenderID, m.ReceiverID})
	if err != nil {
		return models.MessageView{}, s.internal(err, "failed to load user profiles")
	}
	return models.NewMessageView(m, profileOf(users, m.SenderID), profileOf(users, m.ReceiverID)), nil
}

func (s *Service) internal(err error, message string) error {
	logger.Error(message, "error", err)
	return apperrors.Internal(err, message)
}

func profileOf(users map[uuid.UUID]models.User, id uuid.UUID) models.PublicProfile {
	if u, ok := users[id]; ok {
		return u.Public()
	}
	return models.PublicProfile{ID: id}
}
