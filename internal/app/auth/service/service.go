package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	"github.com/picstream/auth-service/internal/domain/auth/jwt"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"github.com/picstream/auth-service/internal/domain/auth/repo"
	"github.com/picstream/auth-service/internal/infra/config"
)

// confirmationTTL is the validity window of an emailed confirmation code.
const confirmationTTL = time.Hour

// Mailer dispatches transactional mail. Failures are logged by the service,
// never surfaced to the registrant.
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, to, login, code string) error
}

type Service interface {
	Register(ctx context.Context, in dto.RegisterDTO) error
	Confirm(ctx context.Context, in dto.ConfirmDTO) error
	ResendConfirmation(ctx context.Context, in dto.ResendDTO) error
	Login(ctx context.Context, in dto.LoginDTO, meta model.ClientMeta) (model.TokenPair, error)
	GoogleLogin(ctx context.Context, identity dto.GoogleIdentityDTO, meta model.ClientMeta) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta model.ClientMeta) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Validate(ctx context.Context, accessToken string) (model.User, error)
}

func New(
	ur repo.UserRepo,
	sr repo.SessionRepo,
	jm jwt.JWTUtil,
	mailer Mailer,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &authService{
		userRepo:    ur,
		sessionRepo: sr,
		jwtUtil:     jm,
		mailer:      mailer,
		cfg:         cfg,
		v:           v,
		log:         log,
		now:         time.Now,
	}
}
