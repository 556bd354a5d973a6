package identity

import (
	"context"
	"sync"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
)

type memoryRepository struct {
	mu         sync.RWMutex
	users      map[string]User
	byEmail    map[string]string
	byUsername map[string]string
}

// NewMemoryRepository builds an in-memory credential store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users:      make(map[string]User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// Create checks both unique keys and inserts under one lock, so concurrent
// registrations cannot both succeed.
func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return apperr.ErrConflict
	}
	if _, exists := r.byUsername[user.Username]; exists {
		return apperr.ErrConflict
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail, email)
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byUsername, username)
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) Ping(context.Context) error { return nil }

func (r *memoryRepository) lookup(index map[string]string, key string) (User, error) {
	id, ok := index[key]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.users[id], nil
}
