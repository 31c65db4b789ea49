package store

import (
	"context"
	"sync"
	"time"

	"github.com/uploadimagens/apiserver/types"
)

// MemoryUserRepository is a process-lifetime user store. The mutex makes
// Create an atomic check-and-insert, so two concurrent registrations with
// the same username cannot both succeed.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]int
	users      map[int]types.User
	nextID     int
}

// NewMemoryUserRepository constructs an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byUsername: make(map[string]int),
		users:      make(map[int]types.User),
		nextID:     1,
	}
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// GetByUsername performs an exact, case-sensitive lookup.
func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return r.users[id], nil
}

// Create inserts a new user, assigning the next sequential ID. It returns
// ErrDuplicate if the username is already taken.
func (r *MemoryUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return types.User{}, ErrDuplicate
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++

	r.byUsername[user.Username] = user.ID
	r.users[user.ID] = user
	return user, nil
}

// Len reports the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
