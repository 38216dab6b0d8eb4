package memory

import (
	"context"
	"sync"
	"time"

	"kbadmin/internal/auth/domain/model"
	"kbadmin/internal/auth/domain/repository"
	"kbadmin/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InMemoryUserRepository is a mutex-guarded, map-backed user store. It shares
// the UserRepository contract with the MongoDB store so the two can be swapped
// without touching the validator or the gateway; intended for development
// seeding and tests.
type InMemoryUserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*model.User
	byID       map[string]*model.User
}

// NewInMemoryUserRepository creates an empty in-memory user store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byUsername: make(map[string]*model.User),
		byID:       make(map[string]*model.User),
	}
}

// NewSeededUserRepository creates an in-memory store pre-populated with the
// given users. Seed users without an ID get one assigned.
func NewSeededUserRepository(seed []*model.User) (*InMemoryUserRepository, error) {
	repo := NewInMemoryUserRepository()
	for _, u := range seed {
		if err := repo.CreateUser(context.Background(), u); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// CreateUser stores a new user, rejecting duplicate usernames.
func (r *InMemoryUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return usecase.ErrUsernameTaken
	}

	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	stored := *user
	r.byUsername[stored.Username] = &stored
	r.byID[stored.ID] = &stored
	return nil
}

// GetUserByUsername retrieves a user by exact username match.
func (r *InMemoryUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byUsername[username]
	if !ok {
		return nil, usecase.ErrUserNotFound
	}

	// Return a copy so callers cannot mutate the stored record
	out := *user
	return &out, nil
}

// GetUserByID retrieves a user by ID.
func (r *InMemoryUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, usecase.ErrUserNotFound
	}

	out := *user
	return &out, nil
}

var _ repository.UserRepository = (*InMemoryUserRepository)(nil)
