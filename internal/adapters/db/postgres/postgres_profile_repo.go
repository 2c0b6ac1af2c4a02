package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresProfileRepo struct {
	db *gorm.DB
}

func NewPostgresProfileRepo(db *gorm.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

func (p *PostgresProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	var pr model.Profile
	res := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&pr)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Profile{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Profile{}, customErrors.WrapInternal(err, "GetProfile")
	}

	return pr, nil
}

func (p *PostgresProfileRepo) UpsertProfile(ctx context.Context, profile model.Profile) (model.Profile, error) {
	res := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&profile)
	if err := res.Error; err != nil {
		return model.Profile{}, customErrors.WrapInternal(err, "UpsertProfile")
	}

	return profile, nil
}

func (p *PostgresProfileRepo) UpdateProfilePhoto(ctx context.Context, userID uuid.UUID, photoURL string) error {
	res := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"photo"}),
		}).
		Create(&model.Profile{UserID: userID, Photo: photoURL})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateProfilePhoto")
	}

	return nil
}
