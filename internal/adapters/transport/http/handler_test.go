package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	authErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
	"github.com/picstream/auth-service/internal/infra/config"
)

type authStub struct {
	registerFn func(dto.RegisterDTO) error
	confirmFn  func(dto.ConfirmDTO) error
	resendFn   func(dto.ResendDTO) error
	loginFn    func(dto.LoginDTO, model.ClientMeta) (model.TokenPair, error)
	googleFn   func(dto.GoogleIdentityDTO, model.ClientMeta) (model.TokenPair, error)
	refreshFn  func(string, model.ClientMeta) (model.TokenPair, error)
	logoutFn   func(string) error
	validateFn func(string) (model.User, error)
}

func (s *authStub) Register(_ context.Context, in dto.RegisterDTO) error {
	return s.registerFn(in)
}

func (s *authStub) Confirm(_ context.Context, in dto.ConfirmDTO) error {
	return s.confirmFn(in)
}

func (s *authStub) ResendConfirmation(_ context.Context, in dto.ResendDTO) error {
	return s.resendFn(in)
}

func (s *authStub) Login(_ context.Context, in dto.LoginDTO, meta model.ClientMeta) (model.TokenPair, error) {
	return s.loginFn(in, meta)
}

func (s *authStub) GoogleLogin(_ context.Context, identity dto.GoogleIdentityDTO, meta model.ClientMeta) (model.TokenPair, error) {
	return s.googleFn(identity, meta)
}

func (s *authStub) Refresh(_ context.Context, token string, meta model.ClientMeta) (model.TokenPair, error) {
	return s.refreshFn(token, meta)
}

func (s *authStub) Logout(_ context.Context, token string) error {
	return s.logoutFn(token)
}

func (s *authStub) Validate(_ context.Context, token string) (model.User, error) {
	return s.validateFn(token)
}

type usersStub struct {
	findFn   func(uuid.UUID) (model.Profile, error)
	updateFn func(uuid.UUID, dto.ProfileDTO) (model.Profile, error)
	uploadFn func(uuid.UUID, string, string, []byte) (model.Profile, error)
}

func (s *usersStub) FindProfile(_ context.Context, id uuid.UUID) (model.Profile, error) {
	return s.findFn(id)
}

func (s *usersStub) UpdateProfile(_ context.Context, id uuid.UUID, in dto.ProfileDTO) (model.Profile, error) {
	return s.updateFn(id, in)
}

func (s *usersStub) UploadAvatar(_ context.Context, id uuid.UUID, filename, contentType string, data []byte) (model.Profile, error) {
	return s.uploadFn(id, filename, contentType, data)
}

func newTestRouter(t *testing.T, auth *authStub, users *usersStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		CookieDomain:     "",
	}
	h := NewHandler(auth, users, nil, cfg, zap.NewNop())
	return NewRouter(h, zap.NewNop())
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pair() model.TokenPair {
	return model.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   720 * time.Hour,
	}
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := w.Result()
	defer res.Body.Close()
	for _, ck := range res.Cookies() {
		if ck.Name == refreshCookieName {
			return ck
		}
	}
	return nil
}

func TestRegistration(t *testing.T) {
	var got dto.RegisterDTO
	auth := &authStub{registerFn: func(in dto.RegisterDTO) error {
		got = in
		return nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	w := doJSON(r, "POST", "/auth/registration", dto.RegisterDTO{
		Email:    "new@example.com",
		Login:    "newuser",
		Password: "Str0ngPass",
	})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "new@example.com", got.Email)
}

func TestRegistration_MalformedBody(t *testing.T) {
	auth := &authStub{registerFn: func(dto.RegisterDTO) error {
		t.Fatal("service must not be called on malformed body")
		return nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	req := httptest.NewRequest("POST", "/auth/registration", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistration_DuplicateEmail(t *testing.T) {
	auth := &authStub{registerFn: func(dto.RegisterDTO) error {
		return authErrors.ErrAlreadyExists
	}}
	r := newTestRouter(t, auth, &usersStub{})

	w := doJSON(r, "POST", "/auth/registration", dto.RegisterDTO{
		Email:    "taken@example.com",
		Login:    "taken",
		Password: "Str0ngPass",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestConfirmation_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusNoContent},
		{"unknown code", authErrors.ErrNotFound, http.StatusNotFound},
		{"already confirmed", authErrors.ErrAlreadyConfirmed, http.StatusBadRequest},
		{"expired", authErrors.ErrExpired, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &authStub{confirmFn: func(dto.ConfirmDTO) error { return tc.err }}
			r := newTestRouter(t, auth, &usersStub{})
			w := doJSON(r, "POST", "/auth/registration-confirmation", dto.ConfirmDTO{Code: uuid.NewString()})
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	auth := &authStub{loginFn: func(in dto.LoginDTO, meta model.ClientMeta) (model.TokenPair, error) {
		require.Equal(t, "user@example.com", in.LoginOrEmail)
		require.NotEmpty(t, meta.IP)
		return pair(), nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	w := doJSON(r, "POST", "/auth/login", dto.LoginDTO{
		LoginOrEmail: "user@example.com",
		Password:     "Str0ngPass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "access-token", body.AccessToken)

	ck := refreshCookie(t, w)
	require.NotNil(t, ck, "refresh cookie must be set")
	require.Equal(t, "refresh-token", ck.Value)
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth := &authStub{loginFn: func(dto.LoginDTO, model.ClientMeta) (model.TokenPair, error) {
		return model.TokenPair{}, authErrors.ErrInvalidCredentials
	}}
	r := newTestRouter(t, auth, &usersStub{})

	w := doJSON(r, "POST", "/auth/login", dto.LoginDTO{LoginOrEmail: "x", Password: "y"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, refreshCookie(t, w))
}

func TestRefresh_RequiresCookie(t *testing.T) {
	auth := &authStub{refreshFn: func(string, model.ClientMeta) (model.TokenPair, error) {
		t.Fatal("service must not be called without cookie")
		return model.TokenPair{}, nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	w := doJSON(r, "POST", "/auth/refresh-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesCookie(t *testing.T) {
	rotated := pair()
	rotated.RefreshToken = "rotated-refresh"
	auth := &authStub{refreshFn: func(raw string, _ model.ClientMeta) (model.TokenPair, error) {
		require.Equal(t, "old-refresh", raw)
		return rotated, nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	req := httptest.NewRequest("POST", "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "old-refresh"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	ck := refreshCookie(t, w)
	require.NotNil(t, ck)
	require.Equal(t, "rotated-refresh", ck.Value)
}

func TestLogout_WithoutCookie(t *testing.T) {
	auth := &authStub{logoutFn: func(string) error {
		t.Fatal("service must not be called without cookie")
		return nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	w := doJSON(r, "POST", "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	var killed string
	auth := &authStub{logoutFn: func(raw string) error {
		killed = raw
		return nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "live-refresh"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "live-refresh", killed)

	ck := refreshCookie(t, w)
	require.NotNil(t, ck)
	require.Empty(t, ck.Value)
	require.Negative(t, ck.MaxAge)
}

func TestMe_RequiresBearer(t *testing.T) {
	auth := &authStub{validateFn: func(string) (model.User, error) {
		return model.User{}, authErrors.ErrInvalidToken
	}}
	r := newTestRouter(t, auth, &usersStub{})

	req := httptest.NewRequest("GET", "/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	userID := uuid.New()
	auth := &authStub{validateFn: func(token string) (model.User, error) {
		require.Equal(t, "valid-access", token)
		return model.User{ID: userID, Email: "me@example.com", Login: "me"}, nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-access")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "me@example.com", body.Email)
	require.Equal(t, "me", body.Login)
	require.Equal(t, userID.String(), body.UserID)
}

func TestProfile_GetAndPut(t *testing.T) {
	userID := uuid.New()
	auth := &authStub{validateFn: func(string) (model.User, error) {
		return model.User{ID: userID}, nil
	}}
	name := "Alice"
	users := &usersStub{
		findFn: func(id uuid.UUID) (model.Profile, error) {
			require.Equal(t, userID, id)
			return model.Profile{UserID: id, Name: "Alice"}, nil
		},
		updateFn: func(id uuid.UUID, in dto.ProfileDTO) (model.Profile, error) {
			require.Equal(t, userID, id)
			require.NotNil(t, in.Name)
			return model.Profile{UserID: id, Name: *in.Name}, nil
		},
	}
	r := newTestRouter(t, auth, users)

	req := httptest.NewRequest("GET", "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Alice", got.Name)

	w = doJSONAuthed(r, "PUT", "/users/profile", dto.ProfileDTO{Name: &name})
	require.Equal(t, http.StatusOK, w.Code)
}

func doJSONAuthed(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAvatar(t *testing.T) {
	userID := uuid.New()
	auth := &authStub{validateFn: func(string) (model.User, error) {
		return model.User{ID: userID}, nil
	}}
	users := &usersStub{
		uploadFn: func(id uuid.UUID, filename, contentType string, data []byte) (model.Profile, error) {
			require.Equal(t, userID, id)
			require.Equal(t, "cat.png", filename)
			require.Equal(t, []byte("png-bytes"), data)
			return model.Profile{UserID: id, Photo: "https://cdn.example.com/avatars/cat.png"}, nil
		},
	}
	r := newTestRouter(t, auth, users)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cat.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/users/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "https://cdn.example.com/avatars/cat.png", got.Photo)
}

func TestUploadAvatar_MissingFile(t *testing.T) {
	auth := &authStub{validateFn: func(string) (model.User, error) {
		return model.User{ID: uuid.New()}, nil
	}}
	r := newTestRouter(t, auth, &usersStub{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/users/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAvatar_StorageDown(t *testing.T) {
	auth := &authStub{validateFn: func(string) (model.User, error) {
		return model.User{ID: uuid.New()}, nil
	}}
	users := &usersStub{
		uploadFn: func(uuid.UUID, string, string, []byte) (model.Profile, error) {
			return model.Profile{}, authErrors.WrapStorage(context.DeadlineExceeded, "put object")
		},
	}
	r := newTestRouter(t, auth, users)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "cat.png")
	_, _ = fw.Write([]byte("x"))
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/users/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &authStub{}, &usersStub{})
	w := doJSON(r, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
