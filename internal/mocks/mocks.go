package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"social-service/internal/friendship"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

type FriendshipRepositoryMock struct {
	mock.Mock
}

// WithTx records the call and runs fn against the mock itself. The configured
// return value stands in for the commit result when fn succeeds.
func (m *FriendshipRepositoryMock) WithTx(ctx context.Context, fn func(repo repositories.FriendshipRepository) error) error {
	args := m.Called(ctx)
	if err := fn(m); err != nil {
		return err
	}
	return args.Error(0)
}

func (m *FriendshipRepositoryMock) Create(ctx context.Context, f models.Friendship) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FriendshipRepositoryMock) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (models.Friendship, error) {
	args := m.Called(ctx, id)
	var f models.Friendship
	if val := args.Get(0); val != nil {
		f = val.(models.Friendship)
	}
	return f, args.Error(1)
}

func (m *FriendshipRepositoryMock) FindByPair(ctx context.Context, userA, userB uuid.UUID) (models.Friendship, error) {
	args := m.Called(ctx, userA, userB)
	var f models.Friendship
	if val := args.Get(0); val != nil {
		f = val.(models.Friendship)
	}
	return f, args.Error(1)
}

func (m *FriendshipRepositoryMock) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FriendshipStatus, respondedAt *time.Time) (models.Friendship, error) {
	args := m.Called(ctx, id, status, respondedAt)
	var f models.Friendship
	if val := args.Get(0); val != nil {
		f = val.(models.Friendship)
	}
	return f, args.Error(1)
}

func (m *FriendshipRepositoryMock) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *FriendshipRepositoryMock) ListAccepted(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	return friendshipList(args.Get(0)), args.Error(1)
}

func (m *FriendshipRepositoryMock) ListByRecipient(ctx context.Context, recipientID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	args := m.Called(ctx, recipientID, status)
	return friendshipList(args.Get(0)), args.Error(1)
}

func (m *FriendshipRepositoryMock) ListByRequester(ctx context.Context, requesterID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	args := m.Called(ctx, requesterID, status)
	return friendshipList(args.Get(0)), args.Error(1)
}

func (m *FriendshipRepositoryMock) ListAll(ctx context.Context) ([]models.Friendship, error) {
	args := m.Called(ctx)
	return friendshipList(args.Get(0)), args.Error(1)
}

func friendshipList(val any) []models.Friendship {
	if val == nil {
		return nil
	}
	return val.([]models.Friendship)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Lookup(ctx context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(ctx, id)
	var u models.User
	if val := args.Get(0); val != nil {
		u = val.(models.User)
	}
	return u, args.Error(1)
}

func (m *UserRepositoryMock) LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	args := m.Called(ctx, ids)
	var users map[uuid.UUID]models.User
	if val := args.Get(0); val != nil {
		users = val.(map[uuid.UUID]models.User)
	}
	return users, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var stored models.Message
	if val := args.Get(0); val != nil {
		stored = val.(models.Message)
	}
	return stored, args.Error(1)
}

func (m *MessageRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (models.Message, error) {
	args := m.Called(ctx, id)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) (models.Message, error) {
	args := m.Called(ctx, id, seenAt)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type FriendshipServiceMock struct {
	mock.Mock
}

func (m *FriendshipServiceMock) CreateRequest(ctx context.Context, callerID, recipientID uuid.UUID) (models.FriendshipView, error) {
	args := m.Called(ctx, callerID, recipientID)
	var view models.FriendshipView
	if val := args.Get(0); val != nil {
		view = val.(models.FriendshipView)
	}
	return view, args.Error(1)
}

func (m *FriendshipServiceMock) Respond(ctx context.Context, callerID, requestID uuid.UUID, action friendship.Action) (models.FriendshipView, error) {
	args := m.Called(ctx, callerID, requestID, action)
	var view models.FriendshipView
	if val := args.Get(0); val != nil {
		view = val.(models.FriendshipView)
	}
	return view, args.Error(1)
}

func (m *FriendshipServiceMock) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *FriendshipServiceMock) ListFriends(ctx context.Context, callerID uuid.UUID) ([]models.PublicProfile, error) {
	args := m.Called(ctx, callerID)
	var profiles []models.PublicProfile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.PublicProfile)
	}
	return profiles, args.Error(1)
}

func (m *FriendshipServiceMock) ListIncomingRequests(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error) {
	args := m.Called(ctx, callerID)
	return viewList(args.Get(0)), args.Error(1)
}

func (m *FriendshipServiceMock) ListOutgoingRequests(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error) {
	args := m.Called(ctx, callerID)
	return viewList(args.Get(0)), args.Error(1)
}

func (m *FriendshipServiceMock) AuditLog(ctx context.Context, callerID uuid.UUID) ([]models.FriendshipView, error) {
	args := m.Called(ctx, callerID)
	return viewList(args.Get(0)), args.Error(1)
}

func viewList(val any) []models.FriendshipView {
	if val == nil {
		return nil
	}
	return val.([]models.FriendshipView)
}

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (models.MessageView, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

func (m *MessageServiceMock) List(ctx context.Context, callerID uuid.UUID) ([]models.MessageView, error) {
	args := m.Called(ctx, callerID)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

func (m *MessageServiceMock) MarkSeen(ctx context.Context, callerID, messageID uuid.UUID) (models.MessageView, error) {
	args := m.Called(ctx, callerID, messageID)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.FriendshipRepository = (*FriendshipRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ interface {
	AreFriends(context.Context, uuid.UUID, uuid.UUID) (bool, error)
	Respond(context.Context, uuid.UUID, uuid.UUID, friendship.Action) (models.FriendshipView, error)
} = (*FriendshipServiceMock)(nil)
var _ interface {
	Publish(context.Context, string, any) error
	Close() error
} = (*PublisherMock)(nil)
