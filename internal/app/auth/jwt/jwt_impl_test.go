package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/picstream/auth-service/internal/infra/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTPrivateKeyPath: "testdata/priv.pem",
		JWTPublicKeyPath:  "testdata/pub.pem",
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		JWTIssuer:         "test",
		JWTAudience:       "test",
	}
}

func TestJWTUtil_GenerateValidate(t *testing.T) {
	util, err := NewJWTUtil(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	uid := uuid.New()
	token, exp, jti, err := util.GenerateAccessToken(uid, []string{"user"})
	if err != nil || exp.IsZero() || jti == "" {
		t.Fatalf("bad generate: %v", err)
	}
	claims, err := util.ValidateAccessToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != uid.String() {
		t.Fatalf("want %s got %s", uid, claims.Subject)
	}
	if claims.ID != jti {
		t.Fatalf("want jti %s got %s", jti, claims.ID)
	}
}

func TestJWTUtil_ValidateErrors(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	if _, err := util.ValidateAccessToken("bad"); err == nil {
		t.Fatal("expected error")
	}
	// token minted for another audience must be rejected
	otherCfg := testConfig()
	otherCfg.JWTAudience = "someone-else"
	other, _ := NewJWTUtil(otherCfg)
	tok, _, _, _ := other.GenerateAccessToken(uuid.New(), nil)
	if _, err := util.ValidateAccessToken(tok); err == nil {
		t.Fatal("expected audience error")
	}
}

func TestJWTUtil_RefreshCycle(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	uid := uuid.New()
	rTok, exp, jti, err := util.GenerateRefreshToken(uid)
	if err != nil || exp.IsZero() || jti == "" {
		t.Fatalf("bad generate: %v", err)
	}
	cl, err := util.ValidateRefreshToken(rTok)
	if err != nil || cl.Subject != uid.String() {
		t.Fatalf("validate error: %v", err)
	}
}

func TestJWTUtil_InvalidAlg(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	token, _ := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"sub": "1"}).SignedString([]byte("x"))
	if _, err := util.ValidateAccessToken(token); err == nil {
		t.Fatal("expected invalid alg")
	}
}

func TestJWTUtil_DistinctJTIs(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	uid := uuid.New()
	_, _, jti1, _ := util.GenerateRefreshToken(uid)
	_, _, jti2, _ := util.GenerateRefreshToken(uid)
	if jti1 == jti2 {
		t.Fatal("two refresh tokens must carry distinct JTIs")
	}
}
