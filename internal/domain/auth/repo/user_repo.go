package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/picstream/auth-service/internal/domain/auth/model"
)

type UserRepo interface {
	// CreateUser persists the user together with its confirmation and
	// recovery rows in a single transaction. Uniqueness violations on
	// email or login surface as ErrAlreadyExists.
	CreateUser(ctx context.Context, u model.User, ec model.EmailConfirmation, pr model.PasswordRecovery) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByLogin(ctx context.Context, login string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	GetConfirmationByCode(ctx context.Context, code string) (model.EmailConfirmation, error)

	GetConfirmationByUserID(ctx context.Context, userID uuid.UUID) (model.EmailConfirmation, error)

	// MarkConfirmed flips IsConfirmed to true; the code is never reusable after.
	MarkConfirmed(ctx context.Context, confirmationID uuid.UUID) error

	// ReplaceConfirmationCode writes a fresh code and expiry for the user,
	// invalidating whatever code was issued before.
	ReplaceConfirmationCode(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) error

	ReplaceRecoveryCode(ctx context.Context, userID uuid.UUID, code string) error
}

type ProfileRepo interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (model.Profile, error)

	// UpsertProfile writes the full profile row, creating it on first use.
	UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error)

	UpdateProfilePhoto(ctx context.Context, userID uuid.UUID, photoURL string) error
}
