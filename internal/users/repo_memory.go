package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User // id -> user
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

// Create stores a new user.
func (r *MemoryRepo) Create(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[user.ID] = user
	return user, nil
}

// GetByID returns a user by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

// GetByAPIKey returns a user by API key.
func (r *MemoryRepo) GetByAPIKey(ctx context.Context, apiKey string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if apiKey == "" {
		return User{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if user.APIKey == apiKey {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

// Update replaces the stored row.
func (r *MemoryRepo) Update(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.data[user.ID] = user
	return nil
}

// TouchLastLogin stamps last_login_at.
func (r *MemoryRepo) TouchLastLogin(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	r.data[userID] = user
	return nil
}

// Delete removes the user.
func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[userID]; !ok {
		return ErrNotFound
	}
	delete(r.data, userID)
	return nil
}
