package repo

import (
	"context"

	"github.com/picstream/auth-service/internal/domain/auth/model"
)

type SessionRepo interface {
	// Store persists the session until its ExpiresAt.
	Store(ctx context.Context, s model.Session) error

	Get(ctx context.Context, jti string) (model.Session, error)

	Exists(ctx context.Context, jti string) (bool, error)

	// Delete removes the session; deleting an absent session is not an error.
	Delete(ctx context.Context, jti string) error
}
