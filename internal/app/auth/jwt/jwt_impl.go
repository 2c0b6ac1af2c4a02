package jwt

import (
	"crypto/rsa"
	"errors"
	"os"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	domainJWT "github.com/picstream/auth-service/internal/domain/auth/jwt"
	"github.com/picstream/auth-service/internal/infra/config"
)

type jwtUtilImpl struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
}

func NewJWTUtil(cfg *config.Config) (*jwtUtilImpl, error) {
	privPem, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwtlib.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwtlib.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse public key")
	}

	return &jwtUtilImpl{
		privateKey: privKey,
		publicKey:  pubKey,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
	}, nil
}

func (j *jwtUtilImpl) GenerateAccessToken(userID uuid.UUID, roles []string) (string, time.Time, string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := domainJWT.AccessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(j.accessTTL)),
			Issuer:    j.issuer,
			Audience:  jwtlib.ClaimStrings{j.audience},
			ID:        jti,
		},
		Roles: roles,
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(j.privateKey)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign access token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *jwtUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := domainJWT.RefreshClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(j.refreshTTL)),
			Issuer:    j.issuer,
			Audience:  jwtlib.ClaimStrings{j.audience},
			ID:        jti,
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(j.privateKey)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign refresh token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *jwtUtilImpl) parseOpts() []jwtlib.ParserOption {
	return []jwtlib.ParserOption{
		jwtlib.WithIssuer(j.issuer),
		jwtlib.WithAudience(j.audience),
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodRS256.Alg()}),
	}
}

func (j *jwtUtilImpl) ValidateAccessToken(raw string) (domainJWT.AccessClaims, error) {
	token, err := jwtlib.ParseWithClaims(raw, &domainJWT.AccessClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		return j.publicKey, nil
	}, j.parseOpts()...)

	if err != nil || !token.Valid {
		return domainJWT.AccessClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*domainJWT.AccessClaims)
	if !ok {
		return domainJWT.AccessClaims{}, customErrors.WrapInternal(
			errors.New("claims not AccessClaims"), "ValidateAccessToken",
		)
	}

	return *claims, nil
}

func (j *jwtUtilImpl) ValidateRefreshToken(raw string) (domainJWT.RefreshClaims, error) {
	token, err := jwtlib.ParseWithClaims(raw, &domainJWT.RefreshClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		return j.publicKey, nil
	}, j.parseOpts()...)

	if err != nil || !token.Valid {
		return domainJWT.RefreshClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*domainJWT.RefreshClaims)
	if !ok {
		return domainJWT.RefreshClaims{}, customErrors.WrapInternal(errors.New("claims not RefreshClaims"), "ValidateRefreshToken")
	}

	return *claims, nil
}
