package http

import (
	"context"

	"github.com/jobboard-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Update applies a partial update; nil values remove the attribute.
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	// ConsumeCode is Update conditional on the stored one-time code.
	ConsumeCode(ctx context.Context, userID, code string, updates map[string]interface{}) error
	Delete(ctx context.Context, u *domain.User) error
}

// SessionRepository is the minimal interface the router requires from a
// session store. Both the DynamoDB and the Redis stores satisfy it.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}
