package friendship

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

// memStore is an in-memory FriendshipRepository that enforces the unordered
// pair uniqueness the database index provides.
type memStore struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	records map[uuid.UUID]models.Friendship
}

func newMemStore() *memStore {
	return &memStore{records: map[uuid.UUID]models.Friendship{}}
}

func (m *memStore) WithTx(ctx context.Context, fn func(repo repositories.FriendshipRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[uuid.UUID]models.Friendship, len(m.records))
	for k, v := range m.records {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.records = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, f models.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if samePair(existing, f.RequesterID, f.RecipientID) {
			return repositories.ErrDuplicateFriendship
		}
	}
	m.records[f.ID] = f
	return nil
}

func (m *memStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (models.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.records[id]
	if !ok {
		return models.Friendship{}, repositories.ErrFriendshipNotFound
	}
	return f, nil
}

func (m *memStore) FindByPair(ctx context.Context, a, b uuid.UUID) (models.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.records {
		if samePair(f, a, b) {
			return f, nil
		}
	}
	return models.Friendship{}, repositories.ErrFriendshipNotFound
}

func (m *memStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FriendshipStatus, respondedAt *time.Time) (models.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.records[id]
	if !ok {
		return models.Friendship{}, repositories.ErrFriendshipNotFound
	}
	f.Status = status
	f.RespondedAt = respondedAt
	m.records[id] = f
	return f, nil
}

func (m *memStore) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	f, err := m.FindByPair(ctx, a, b)
	if err != nil {
		return false, nil
	}
	return f.Status == models.FriendshipAccepted, nil
}

func (m *memStore) ListAccepted(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	return m.filter(func(f models.Friendship) bool {
		return f.Involves(userID) && f.Status == models.FriendshipAccepted
	}), nil
}

func (m *memStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	return m.filter(func(f models.Friendship) bool {
		return f.RecipientID == recipientID && f.Status == status
	}), nil
}

func (m *memStore) ListByRequester(ctx context.Context, requesterID uuid.UUID, status models.FriendshipStatus) ([]models.Friendship, error) {
	return m.filter(func(f models.Friendship) bool {
		return f.RequesterID == requesterID && f.Status == status
	}), nil
}

func (m *memStore) ListAll(ctx context.Context) ([]models.Friendship, error) {
	return m.filter(func(models.Friendship) bool { return true }), nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memStore) filter(keep func(models.Friendship) bool) []models.Friendship {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Friendship{}
	for _, f := range m.records {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func samePair(f models.Friendship, a, b uuid.UUID) bool {
	return (f.RequesterID == a && f.RecipientID == b) || (f.RequesterID == b && f.RecipientID == a)
}

// memDirectory is a fixed user directory.
type memDirectory map[uuid.UUID]models.User

func (d memDirectory) Lookup(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, ok := d[id]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	return u, nil
}

func (d memDirectory) LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := d[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (d memDirectory) add(username string, role models.Role) models.User {
	u := models.User{
		ID:         uuid.New(),
		Username:   username,
		FirstName:  username,
		Role:       role,
		State:      models.UserStateActive,
		Visibility: models.VisibilityPrivate,
	}
	d[u.ID] = u
	return u
}

type recordedEvent struct {
	name    string
	payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *recordingEmitter) Emit(ctx context.Context, eventName string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{name: eventName, payload: payload})
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushed map[uuid.UUID][]models.Event
}

func (n *recordingNotifier) NotifyUser(userID uuid.UUID, event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pushed == nil {
		n.pushed = map[uuid.UUID][]models.Event{}
	}
	n.pushed[userID] = append(n.pushed[userID], event)
}
