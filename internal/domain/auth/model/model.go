package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record. PasswordHash is empty for accounts created
// through OAuth federation.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Login        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmailConfirmation is the one-shot confirmation record owned 1:1 by a user.
// The code is consumable only while unconfirmed and unexpired; once consumed
// IsConfirmed stays true forever.
type EmailConfirmation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	IsConfirmed      bool
	ConfirmationCode string `gorm:"uniqueIndex;not null"`
	ExpirationDate   time.Time
}

// PasswordRecovery holds the current recovery code for a user. It is
// re-issued in place on every recovery request.
type PasswordRecovery struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Email        string
	RecoveryCode string
}

// Profile is created lazily on first update or avatar upload.
type Profile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string
	Surname        string
	City           string
	AboutMe        string
	DateOfBirthday string
	Photo          string
	UpdatedAt      time.Time
}

// Session is one refresh-token session. Several sessions per user may be
// live at the same time, one per login.
type Session struct {
	JTI       string    `json:"jti"`
	UserID    uuid.UUID `json:"userId"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ClientMeta is the device metadata captured at token issuance.
type ClientMeta struct {
	IP        string
	UserAgent string
}

type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	UserID          uuid.UUID
	RefreshTokenJTI string
}
