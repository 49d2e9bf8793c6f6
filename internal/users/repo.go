package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// Repo defines persistence operations for users. Mutations are full-row
// updates; Delete removes the user's documents (and their analyses) through
// the schema's declared cascade.
type Repo interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (User, error)
	Update(ctx context.Context, user User) error
	TouchLastLogin(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}
