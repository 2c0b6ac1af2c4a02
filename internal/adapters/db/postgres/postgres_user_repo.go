package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"gorm.io/gorm"
)

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User, ec model.EmailConfirmation, pr model.PasswordRecovery) (uuid.UUID, error) {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&ec).Error; err != nil {
			return err
		}
		return tx.Create(&pr).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (p *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByEmail")
	}

	return u, nil
}

func (p *PostgresUserRepo) GetUserByLogin(ctx context.Context, login string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("login = ?", login).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByLogin")
	}

	return u, nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}

	return u, nil
}

func (p *PostgresUserRepo) GetConfirmationByCode(ctx context.Context, code string) (model.EmailConfirmation, error) {
	var ec model.EmailConfirmation
	res := p.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&ec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.EmailConfirmation{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.EmailConfirmation{}, customErrors.WrapInternal(err, "GetConfirmationByCode")
	}

	return ec, nil
}

func (p *PostgresUserRepo) GetConfirmationByUserID(ctx context.Context, userID uuid.UUID) (model.EmailConfirmation, error) {
	var ec model.EmailConfirmation
	res := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&ec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.EmailConfirmation{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.EmailConfirmation{}, customErrors.WrapInternal(err, "GetConfirmationByUserID")
	}

	return ec, nil
}

func (p *PostgresUserRepo) MarkConfirmed(ctx context.Context, confirmationID uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Model(&model.EmailConfirmation{}).
		Where("id = ?", confirmationID).
		Update("is_confirmed", true)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "MarkConfirmed")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func (p *PostgresUserRepo) ReplaceConfirmationCode(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) error {
	res := p.db.WithContext(ctx).
		Model(&model.EmailConfirmation{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"confirmation_code": code,
			"expiration_date":   expiresAt,
		})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "ReplaceConfirmationCode")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func (p *PostgresUserRepo) ReplaceRecoveryCode(ctx context.Context, userID uuid.UUID, code string) error {
	res := p.db.WithContext(ctx).
		Model(&model.PasswordRecovery{}).
		Where("user_id = ?", userID).
		Update("recovery_code", code)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "ReplaceRecoveryCode")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}
