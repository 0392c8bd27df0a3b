package friendship

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

// ListFriends returns the profiles of everyone callerID is friends with.
// No friends yields an empty slice.
func (s *Service) ListFriends(ctx context.Context, callerID uuid.UUID) ([]models.PublicProfile, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	records, err := s.repo.ListAccepted(ctx, callerID)
	if err != nil {
		return nil, s.internal(err, "failed to load friends")
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, f := range records {
		ids = append(ids, f.OtherParty(callerID))
	}
	users, err := s.users.LookupMany(ctx, ids)
	if err != nil {
		return nil, s.internal(err, "failed to load friend profiles")
	}

	friends := make([]models.PublicProfile, 0, len(ids))
	for _, id := range ids {
		friends = append(friends, profileOf(users, id))
	}
	return friends, nil
}

// ListIncomingRequests returns pending requests addressed to callerID.
func (s *Service) ListIncomingRequests(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	records, err := s.repo.ListByRecipient(ctx, callerID, models.FriendshipPending)
	if err != nil {
		return nil, s.internal(err, "failed to load friend requests")
	}
	return s.enrichMany(ctx, records)
}

// ListOutgoingRequests returns pending requests callerID has sent.
func (s *Service) ListOutgoingRequests(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	records, err := s.repo.ListByRequester(ctx, callerID, models.FriendshipPending)
	if err != nil {
		return nil, s.internal(err, "failed to load sent requests")
	}
	return s.enrichMany(ctx, records)
}

// AuditLog returns every friendship record. Only staff may read it.
func (s *Service) AuditLog(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	caller, err := s.users.Lookup(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.Unauthenticated("unknown user")
		}
		return nil, s.internal(err, "failed to look up caller")
	}
	if !caller.CanViewFriendshipLog() {
		return nil, apperrors.Forbidden("you don't have permission to access this resource")
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to load friendship log")
	}
	return s.enrichMany(ctx, records)
}

func (s *Service) enrich(ctx context.Context, f models.Friendship) (models.FriendshipView, error) {
	views, err := s.enrichMany(ctx, []models.Friendship{f})
	if err != nil {
		return models.FriendshipView{}, err
	}
	return views[0], nil
}

func (s *Service) enrichMany(ctx context.Context, records []models.Friendship) ([]models.FriendshipView, error) {
	views := make([]models.FriendshipView, 0, len(records))
	if len(records) == 0 {
		return views, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(records)*2)
	ids := make([]uuid.UUID, 0, len(records)*2)
	for _, f := range records {
		for _, id := range []uuid.UUID{f.RequesterID, f.RecipientID} {
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
	for _, f := range records {
		views = append(views, models.NewFriendshipView(f, profileOf(users, f.RequesterID), profileOf(users, f.RecipientID)))
	}
	return views, nil
}

func profileOf(users map[uuid.UUID]models.User, id uuid.UUID) models.PublicProfile {
	if u, ok := users[id]; ok {
		return u.Public()
	}
	return models.PublicProfile{ID: id}
}
