package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"github.com/picstream/auth-service/internal/domain/auth/repo"
)

// AvatarStorage uploads raw image bytes and returns the public URL.
type AvatarStorage interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type Service interface {
	FindProfile(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in dto.ProfileDTO) (model.Profile, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (model.Profile, error)
}

func New(pr repo.ProfileRepo, storage AvatarStorage, v *validator.Validate) Service {
	return &usersService{
		profileRepo: pr,
		storage:     storage,
		v:           v,
	}
}
