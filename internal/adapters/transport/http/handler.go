package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/picstream/auth-service/internal/adapters/oauth/google"
	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	authsvc "github.com/picstream/auth-service/internal/app/auth/service"
	userssvc "github.com/picstream/auth-service/internal/app/users/service"
	authErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"github.com/picstream/auth-service/internal/infra/config"
)

const (
	refreshCookieName = "refreshToken"
	stateCookieName   = "oauthState"
	stateCookieTTL    = 10 * time.Minute
	maxAvatarBytes    = 5 << 20
)

type Handler struct {
	auth   authsvc.Service
	users  userssvc.Service
	google *google.Client
	cfg    *config.Config
	log    *zap.Logger
}

func NewHandler(auth authsvc.Service, users userssvc.Service, g *google.Client, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{auth: auth, users: users, google: g, cfg: cfg, log: log}
}

func (h *Handler) clientMeta(c *gin.Context) model.ClientMeta {
	ua := c.Request.UserAgent()
	if ua == "" {
		ua = "browser not found"
	}
	return model.ClientMeta{IP: c.ClientIP(), UserAgent: ua}
}

// setRefreshCookie issues the refresh token as an HTTP-only cookie. The
// original frontend config shipped it without HttpOnly; that looked like an
// oversight and is deliberately not reproduced.
func (h *Handler) setRefreshCookie(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		refreshCookieName,
		pair.RefreshToken,
		int(pair.RefreshTTL.Seconds()),
		"/",
		h.cfg.CookieDomain,
		true, // secure
		true, // httpOnly
	)
}

func (h *Handler) registration(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.Register(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) registrationConfirmation(c *gin.Context) {
	var body dto.ConfirmDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.Confirm(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) registrationEmailResending(c *gin.Context) {
	var body dto.ResendDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.ResendConfirmation(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), body, h.clientMeta(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setRefreshCookie(c, pair)
	c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: pair.AccessToken})
}

func (h *Handler) refreshToken(c *gin.Context) {
	raw, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), raw, h.clientMeta(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setRefreshCookie(c, pair)
	c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: pair.AccessToken})
}

func (h *Handler) logout(c *gin.Context) {
	// a request without the cookie has no session to kill; still a success
	if raw, err := c.Cookie(refreshCookieName); err == nil {
		if err := h.auth.Logout(c.Request.Context(), raw); err != nil {
			h.handleError(c, err)
			return
		}
	}
	c.SetCookie(refreshCookieName, "", -1, "/", h.cfg.CookieDomain, true, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) googleAuth(c *gin.Context) {
	state, err := h.google.StateToken()
	if err != nil {
		h.handleError(c, authErrors.WrapInternal(err, "state token"))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, int(stateCookieTTL.Seconds()), "/", h.cfg.CookieDomain, true, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthURL(state))
}

func (h *Handler) googleRedirect(c *gin.Context) {
	wantState, err := c.Cookie(stateCookieName)
	if err != nil || wantState == "" || c.Query("state") != wantState {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "oauth state mismatch"})
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", h.cfg.CookieDomain, true, true)

	token, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "oauth exchange failed"})
		return
	}

	identity, err := h.google.FetchIdentity(c.Request.Context(), token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	pair, err := h.auth.GoogleLogin(c.Request.Context(), identity, h.clientMeta(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setRefreshCookie(c, pair)
	if h.cfg.FrontendURL != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"?accessToken="+pair.AccessToken)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: pair.AccessToken})
}

func (h *Handler) me(c *gin.Context, user model.User) {
	c.JSON(http.StatusOK, dto.MeResponse{
		Email:  user.Email,
		Login:  user.Login,
		UserID: user.ID.String(),
	})
}

func (h *Handler) findProfile(c *gin.Context, user model.User) {
	profile, err := h.users.FindProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(profile))
}

func (h *Handler) updateProfile(c *gin.Context, user model.User) {
	var body dto.ProfileDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), user.ID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(profile))
}

func (h *Handler) uploadAvatar(c *gin.Context, user model.User) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, authErrors.WrapInternal(err, "open upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		h.handleError(c, authErrors.WrapInternal(err, "read upload"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	profile, err := h.users.UploadAvatar(c.Request.Context(), user.ID, fileHeader.Filename, contentType, data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profileResponse(profile))
}

func profileResponse(p model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		Name:           p.Name,
		Surname:        p.Surname,
		City:           p.City,
		AboutMe:        p.AboutMe,
		DateOfBirthday: p.DateOfBirthday,
		Photo:          p.Photo,
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case authErrors.IsAlreadyConfirmed(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already confirmed"})
	case authErrors.IsExpired(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation code expired"})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case authErrors.IsStorage(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
	default:
		h.log.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
