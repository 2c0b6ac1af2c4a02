package dto

type RegisterDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Login    string `json:"login"    validate:"required,alphanum,min=3,max=20"`
	Password string `json:"password" validate:"required,strongpwd"`
}

type ConfirmDTO struct {
	Code string `json:"code" validate:"required"`
}

type ResendDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginDTO struct {
	LoginOrEmail string `json:"loginOrEmail" validate:"required"`
	Password     string `json:"password"     validate:"required"`
}

// GoogleIdentityDTO is the identity assertion extracted from the provider's
// userinfo endpoint.
type GoogleIdentityDTO struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// ProfileDTO carries partial profile updates; nil means "leave unchanged".
type ProfileDTO struct {
	Name           *string `json:"name"           validate:"omitempty,max=40"`
	Surname        *string `json:"surname"        validate:"omitempty,max=40"`
	City           *string `json:"city"           validate:"omitempty,max=60"`
	AboutMe        *string `json:"aboutMe"        validate:"omitempty,max=1000"`
	DateOfBirthday *string `json:"dateOfBirthday" validate:"omitempty,datetime=02.01.2006"`
}

type ProfileResponse struct {
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	City           string `json:"city"`
	AboutMe        string `json:"aboutMe"`
	DateOfBirthday string `json:"dateOfBirthday"`
	Photo          string `json:"photo"`
}

type MeResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}
