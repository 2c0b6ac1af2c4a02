package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/jwt"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"github.com/picstream/auth-service/internal/domain/auth/repo"
	"github.com/picstream/auth-service/internal/infra/config"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type authService struct {
	userRepo    repo.UserRepo
	sessionRepo repo.SessionRepo
	jwtUtil     jwt.JWTUtil
	mailer      Mailer
	cfg         *config.Config
	v           *validator.Validate
	log         *zap.Logger
	// now is swappable so expiry behavior is testable against a fixed clock.
	now func() time.Time
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := argon2id.CreateHash(in.Password+a.cfg.PasswordPepper, argonParams)
	if err != nil {
		return customErrors.WrapInternal(err, "Register")
	}

	now := a.now()
	user := model.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Login:        in.Login,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	confirmation := model.EmailConfirmation{
		ID:               uuid.New(),
		UserID:           user.ID,
		IsConfirmed:      false,
		ConfirmationCode: uuid.NewString(),
		ExpirationDate:   now.Add(confirmationTTL),
	}
	recovery := model.PasswordRecovery{
		ID:           uuid.New(),
		UserID:       user.ID,
		Email:        in.Email,
		RecoveryCode: uuid.NewString(),
	}

	if _, err = a.userRepo.CreateUser(ctx, user, confirmation, recovery); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "Register")
	}

	// Mail dispatch must not fail or roll back a completed registration;
	// the user can always request a resend.
	if err := a.mailer.SendConfirmationEmail(ctx, user.Email, user.Login, confirmation.ConfirmationCode); err != nil {
		a.log.Error("confirmation email dispatch failed",
			zap.String("userId", user.ID.String()),
			zap.Error(err),
		)
	}

	return nil
}

func (a *authService) Confirm(ctx context.Context, in dto.ConfirmDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	confirmation, err := a.userRepo.GetConfirmationByCode(ctx, in.Code)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "Confirm")
	}

	if confirmation.IsConfirmed {
		return customErrors.ErrAlreadyConfirmed
	}
	if a.now().After(confirmation.ExpirationDate) {
		return customErrors.ErrExpired
	}

	if err := a.userRepo.MarkConfirmed(ctx, confirmation.ID); err != nil {
		return customErrors.WrapInternal(err, "Confirm")
	}

	return nil
}

func (a *authService) ResendConfirmation(ctx context.Context, in dto.ResendDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "ResendConfirmation")
	}

	confirmation, err := a.userRepo.GetConfirmationByUserID(ctx, user.ID)
	if err != nil {
		return customErrors.WrapInternal(err, "ResendConfirmation")
	}
	if confirmation.IsConfirmed {
		return customErrors.ErrAlreadyConfirmed
	}

	// A fresh code invalidates whatever was mailed before.
	code := uuid.NewString()
	if err := a.userRepo.ReplaceConfirmationCode(ctx, user.ID, code, a.now().Add(confirmationTTL)); err != nil {
		return customErrors.WrapInternal(err, "ResendConfirmation")
	}

	if err := a.mailer.SendConfirmationEmail(ctx, user.Email, user.Login, code); err != nil {
		a.log.Error("confirmation email re-dispatch failed",
			zap.String("userId", user.ID.String()),
			zap.Error(err),
		)
	}

	return nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO, meta model.ClientMeta) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.LoginOrEmail)
	if errors.Is(err, customErrors.ErrNotFound) {
		user, err = a.userRepo.GetUserByLogin(ctx, in.LoginOrEmail)
	}
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	// OAuth-only accounts carry no hash and cannot use credential login.
	if user.PasswordHash == "" {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	ok, err := argon2id.ComparePasswordAndHash(in.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, user.ID, meta)
}

func (a *authService) GoogleLogin(ctx context.Context, identity dto.GoogleIdentityDTO, meta model.ClientMeta) (model.TokenPair, error) {
	if err := a.v.Struct(identity); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		// known user, fall through to token issuance

	case errors.Is(err, customErrors.ErrNotFound):
		user, err = a.createFederatedUser(ctx, identity)
		if err != nil {
			return model.TokenPair{}, err
		}

	default:
		return model.TokenPair{}, customErrors.WrapInternal(err, "GoogleLogin")
	}

	return a.issueTokens(ctx, user.ID, meta)
}

// createFederatedUser provisions an auto-confirmed account with no password
// hash. The login is derived from the email local part; on collision a random
// suffix is appended once.
func (a *authService) createFederatedUser(ctx context.Context, identity dto.GoogleIdentityDTO) (model.User, error) {
	login := loginFromEmail(identity.Email)

	for attempt := 0; attempt < 2; attempt++ {
		now := a.now()
		user := model.User{
			ID:        uuid.New(),
			Email:     identity.Email,
			Login:     login,
			CreatedAt: now,
		}
		confirmation := model.EmailConfirmation{
			ID:               uuid.New(),
			UserID:           user.ID,
			IsConfirmed:      true,
			ConfirmationCode: uuid.NewString(),
			ExpirationDate:   now,
		}
		recovery := model.PasswordRecovery{
			ID:           uuid.New(),
			UserID:       user.ID,
			Email:        identity.Email,
			RecoveryCode: uuid.NewString(),
		}

		_, err := a.userRepo.CreateUser(ctx, user, confirmation, recovery)
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, customErrors.ErrAlreadyExists):
			// Either the login clashed or a concurrent federation login won
			// the race on the email. Re-check the email before retrying.
			if existing, lookupErr := a.userRepo.GetUserByEmail(ctx, identity.Email); lookupErr == nil {
				return existing, nil
			}
			login = login + "-" + uuid.NewString()[:8]
		default:
			return model.User{}, customErrors.WrapInternal(err, "createFederatedUser")
		}
	}

	return model.User{}, customErrors.WrapInternal(errors.New("login collision retry exhausted"), "createFederatedUser")
}

func (a *authService) Refresh(ctx context.Context, refreshToken string, meta model.ClientMeta) (model.TokenPair, error) {
	claims, err := a.jwtUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	live, err := a.sessionRepo.Exists(ctx, claims.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if !live {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	// Rotation: the presented session dies before its successor is born.
	if err := a.sessionRepo.Delete(ctx, claims.ID); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	return a.issueTokens(ctx, uid, meta)
}

func (a *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := a.jwtUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		// An invalid or stale token has nothing left to invalidate;
		// logout stays idempotent.
		return nil
	}

	if err := a.sessionRepo.Delete(ctx, claims.ID); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}

	return nil
}

func (a *authService) Validate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := a.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	return user, nil
}

func (a *authService) issueTokens(ctx context.Context, userID uuid.UUID, meta model.ClientMeta) (model.TokenPair, error) {
	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(userID, []string{"user"})
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, jti, err := a.jwtUtil.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	now := a.now()
	session := model.Session{
		JTI:       jti,
		UserID:    userID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		IssuedAt:  now,
		ExpiresAt: rtExp,
	}
	if err := a.sessionRepo.Store(ctx, session); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "StoreSession")
	}

	return model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       atExp.Sub(now),
		RefreshTTL:      rtExp.Sub(now),
		UserID:          userID,
		RefreshTokenJTI: jti,
	}, nil
}

func loginFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	var sb strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() < 3 {
		return "user" + uuid.NewString()[:8]
	}
	return sb.String()
}
