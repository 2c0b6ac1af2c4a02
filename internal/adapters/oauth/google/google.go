package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/adapters/transport/http/dto"
	"github.com/picstream/auth-service/internal/infra/config"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Client wraps the Google OAuth code flow: consent URL, code exchange and
// the userinfo lookup that yields the identity assertion.
type Client struct {
	conf *oauth2.Config
}

func New(cfg *config.Config) *Client {
	return &Client{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// StateToken returns an unguessable state value for CSRF protection.
func (c *Client) StateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *Client) AuthURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.conf.Exchange(ctx, code)
}

// FetchIdentity resolves the federated identity behind the token.
func (c *Client) FetchIdentity(ctx context.Context, token *oauth2.Token) (dto.GoogleIdentityDTO, error) {
	resp, err := c.conf.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		return dto.GoogleIdentityDTO{}, customErrors.WrapInternal(err, "userinfo request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dto.GoogleIdentityDTO{}, customErrors.WrapInternal(
			fmt.Errorf("userinfo status %d", resp.StatusCode), "userinfo request")
	}

	var identity dto.GoogleIdentityDTO
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return dto.GoogleIdentityDTO{}, customErrors.WrapInternal(err, "decode userinfo")
	}
	if identity.Email == "" {
		return dto.GoogleIdentityDTO{}, customErrors.ErrInvalidCredentials
	}

	return identity, nil
}
