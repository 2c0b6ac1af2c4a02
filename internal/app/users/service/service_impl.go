package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"github.com/picstream/auth-service/internal/domain/auth/repo"
)

type usersService struct {
	profileRepo repo.ProfileRepo
	storage     AvatarStorage
	v           *validator.Validate
}

func (s *usersService) FindProfile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	profile, err := s.profileRepo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// Profiles are lazy; an untouched profile reads as empty.
		return model.Profile{UserID: userID}, nil
	case err != nil:
		return model.Profile{}, customErrors.WrapInternal(err, "FindProfile")
	}
	return profile, nil
}

func (s *usersService) UpdateProfile(ctx context.Context, userID uuid.UUID, in dto.ProfileDTO) (model.Profile, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Profile{}, customErrors.NewInvalidArgument(err.Error())
	}

	current, err := s.FindProfile(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	next := applyPatch(current, in)
	updated, err := s.profileRepo.UpsertProfile(ctx, next)
	if err != nil {
		return model.Profile{}, customErrors.WrapInternal(err, "UpdateProfile")
	}
	return updated, nil
}

func (s *usersService) UploadAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (model.Profile, error) {
	if len(data) == 0 {
		return model.Profile{}, customErrors.NewInvalidArgument("empty file")
	}

	url, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		// photo stays untouched on storage failure
		if customErrors.IsStorage(err) {
			return model.Profile{}, err
		}
		return model.Profile{}, customErrors.WrapStorage(err, "UploadAvatar")
	}

	if err := s.profileRepo.UpdateProfilePhoto(ctx, userID, url); err != nil {
		return model.Profile{}, customErrors.WrapInternal(err, "UploadAvatar")
	}

	return s.FindProfile(ctx, userID)
}

// applyPatch returns a new profile value with the non-nil DTO fields applied.
func applyPatch(p model.Profile, in dto.ProfileDTO) model.Profile {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Surname != nil {
		p.Surname = *in.Surname
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.AboutMe != nil {
		p.AboutMe = *in.AboutMe
	}
	if in.DateOfBirthday != nil {
		p.DateOfBirthday = *in.DateOfBirthday
	}
	return p
}
