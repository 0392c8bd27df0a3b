package friendship

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"social-service/internal/apperrors"
	"social-service/internal/logger"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

const (
	EventRequested = "friendship.requested"
	EventResponded = "friendship.responded"
)

// EventEmitter publishes domain events after a transition commits.
type EventEmitter interface {
	Emit(ctx context.Context, eventName string, payload any)
}

// Notifier pushes realtime events to a connected user.
type Notifier interface {
	NotifyUser(userID uuid.UUID, event models.Event)
}

// Service is the friendship state machine and its read side. All writes to
// the friendships table go through CreateRequest and Respond.
type Service struct {
	repo     repositories.FriendshipRepository
	users    repositories.UserRepository
	events   EventEmitter
	notifier Notifier
	now      func() time.Time
}

// NewService builds a Service. events and notifier may be nil.
func NewService(repo repositories.FriendshipRepository, users repositories.UserRepository, events EventEmitter, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		events:   events,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest opens a pending request from callerID to recipientID.
func (s *Service) CreateRequest(ctx context.Context, callerID, recipientID uuid.UUID) (models.FriendshipView, error) {
	if callerID == uuid.Nil {
		return models.FriendshipView{}, apperrors.Unauthenticated("authentication required")
	}
	if callerID == recipientID {
		return models.FriendshipView{}, apperrors.InvalidRequest("cannot friend yourself")
	}
	if _, err := s.users.Lookup(ctx, recipientID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.FriendshipView{}, apperrors.NotFound("user not found")
		}
		return models.FriendshipView{}, s.internal(err, "failed to look up recipient")
	}

	var created models.Friendship
	err := s.repo.WithTx(ctx, func(tx repositories.FriendshipRepository) error {
		existing, err := tx.FindByPair(ctx, callerID, recipientID)
		if err == nil {
			return existingPairError(existing.Status)
		}
		if !errors.Is(err, repositories.ErrFriendshipNotFound) {
			return err
		}

		created = models.Friendship{
			ID:          uuid.New(),
			RequesterID: callerID,
			RecipientID: recipientID,
			Status:      models.FriendshipPending,
			CreatedAt:   s.now(),
		}
		return tx.Create(ctx, created)
	})
	if err != nil {
		return models.FriendshipView{}, s.mapStoreError(err, "failed to create friend request")
	}

	logger.Info("friend request created", "friendship_id", created.ID, "requester_id", callerID, "recipient_id", recipientID)
	observability.IncFriendshipTransition(string(models.FriendshipPending))

	view, err := s.enrich(ctx, created)
	if err != nil {
		return models.FriendshipView{}, err
	}
	s.publish(ctx, EventRequested, view, recipientID, models.EventFriendRequest)
	return view, nil
}

// Respond applies the recipient's action to an open request.
func (s *Service) Respond(ctx context.Context, callerID, requestID uuid.UUID, action Action) (models.FriendshipView, error) {
	if callerID == uuid.Nil {
		return models.FriendshipView{}, apperrors.Unauthenticated("authentication required")
	}
	if action == nil {
		action = MarkSeen{}
	}

	var (
		updated models.Friendship
		from    models.FriendshipStatus
	)
	err := s.repo.WithTx(ctx, func(tx repositories.FriendshipRepository) error {
		f, err := tx.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if f.RecipientID != callerID {
			return apperrors.Forbidden("only the recipient can respond to this request")
		}
		if !f.Status.Open() {
			return apperrors.NotFound("friend request not found")
		}

		from = f.Status
		to := action.target()
		if from == to {
			// viewing an already seen request keeps the first response time
			updated = f
			return nil
		}
		respondedAt := s.now()
		updated, err = tx.UpdateStatus(ctx, f.ID, to, &respondedAt)
		return err
	})
	if err != nil {
		return models.FriendshipView{}, s.mapStoreError(err, "failed to respond to friend request")
	}

	if from != updated.Status {
		logger.Info("friendship transition", "friendship_id", updated.ID, "from", from, "to", updated.Status, "user_id", callerID, "action", action.String())
		observability.IncFriendshipTransition(string(updated.Status))
	}

	view, err := s.enrich(ctx, updated)
	if err != nil {
		return models.FriendshipView{}, err
	}
	if updated.Status.Terminal() {
		s.publish(ctx, EventResponded, view, updated.RequesterID, models.EventFriendRequestUpdate)
	}
	return view, nil
}

// AreFriends reports whether an accepted record exists for the unordered pair.
// It needs no caller context.
func (s *Service) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	if userA == userB {
		return false, nil
	}
	ok, err := s.repo.AreFriends(ctx, userA, userB)
	if err != nil {
		return false, s.internal(err, "failed to check friendship")
	}
	return ok, nil
}

func existingPairError(status models.FriendshipStatus) error {
	switch status {
	case models.FriendshipAccepted:
		return apperrors.InvalidRequest("already friends")
	case models.FriendshipRejected:
		return apperrors.InvalidRequest("request was rejected")
	default:
		return apperrors.Conflict("request already sent")
	}
}

func (s *Service) mapStoreError(err error, message string) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repositories.ErrDuplicateFriendship):
		return apperrors.Conflict("request already sent")
	case errors.Is(err, repositories.ErrFriendshipNotFound):
		return apperrors.NotFound("friend request not found")
	default:
		return s.internal(err, message)
	}
}

func (s *Service) internal(err error, message string) error {
	logger.Error(message, "error", err)
	return apperrors.Internal(err, message)
}

func (s *Service) publish(ctx context.Context, eventName string, view models.FriendshipView, notify uuid.UUID, eventType string) {
	if s.events != nil {
		s.events.Emit(ctx, eventName, view)
	}
	if s.notifier != nil {
		s.notifier.NotifyUser(notify, models.Event{Type: eventType, Friendship: &view})
	}
}
