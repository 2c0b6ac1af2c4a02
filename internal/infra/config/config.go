package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	HTTPAddress   string
	HTTPSCertFile string
	HTTPSKeyFile  string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	JWTIssuer         string
	JWTAudience       string

	PasswordPepper string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	// ConfirmationURL is the frontend page the emailed code link points at.
	ConfirmationURL string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSBucketName      string
	AWSEndpoint        string
	AWSPublicBaseURL   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	CookieDomain     string
	AllowedOrigins   []string
	AllowCredentials bool
}

var requiredKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS",
	"JWT_PRIVATE_KEY_PATH",
	"JWT_PUBLIC_KEY_PATH",
	"ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL",
	"JWT_ISSUER",
	"JWT_AUDIENCE",
	"PASSWORD_PEPPER",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"SMTP_FROM",
	"AWS_REGION",
	"AWS_BUCKET_NAME",
	"AWS_PUBLIC_BASE_URL",
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
	"GOOGLE_REDIRECT_URL",
}

var optionalKeys = []string{
	"REDIS_PASSWORD",
	"REDIS_DB",
	"HTTP_ADDRESS",
	"HTTPS_CERT_FILE",
	"HTTPS_KEY_FILE",
	"CONFIRMATION_URL",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_ENDPOINT",
	"FRONTEND_URL",
	"COOKIE_DOMAIN",
	"ALLOWED_ORIGINS",
	"ALLOW_CREDENTIALS",
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range append(append([]string{}, requiredKeys...), optionalKeys...) {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetDefault("HTTP_ADDRESS", ":8080")

	var missing []string
	for _, key := range requiredKeys {
		if viper.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		DatabaseURL: viper.GetString("DATABASE_URL"),

		RedisAddress:  viper.GetString("REDIS_ADDRESS"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),
		RedisDB:       viper.GetInt("REDIS_DB"),

		HTTPAddress:   viper.GetString("HTTP_ADDRESS"),
		HTTPSCertFile: viper.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:  viper.GetString("HTTPS_KEY_FILE"),

		JWTPrivateKeyPath: viper.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  viper.GetString("JWT_PUBLIC_KEY_PATH"),
		AccessTokenTTL:    viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   viper.GetDuration("REFRESH_TOKEN_TTL"),
		JWTIssuer:         viper.GetString("JWT_ISSUER"),
		JWTAudience:       viper.GetString("JWT_AUDIENCE"),

		PasswordPepper: viper.GetString("PASSWORD_PEPPER"),

		SMTPHost:        viper.GetString("SMTP_HOST"),
		SMTPPort:        viper.GetInt("SMTP_PORT"),
		SMTPUsername:    viper.GetString("SMTP_USERNAME"),
		SMTPPassword:    viper.GetString("SMTP_PASSWORD"),
		SMTPFrom:        viper.GetString("SMTP_FROM"),
		ConfirmationURL: viper.GetString("CONFIRMATION_URL"),

		AWSRegion:          viper.GetString("AWS_REGION"),
		AWSAccessKeyID:     viper.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: viper.GetString("AWS_SECRET_ACCESS_KEY"),
		AWSBucketName:      viper.GetString("AWS_BUCKET_NAME"),
		AWSEndpoint:        viper.GetString("AWS_ENDPOINT"),
		AWSPublicBaseURL:   viper.GetString("AWS_PUBLIC_BASE_URL"),

		GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
		FrontendURL:        viper.GetString("FRONTEND_URL"),

		CookieDomain:     viper.GetString("COOKIE_DOMAIN"),
		AllowedOrigins:   viper.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: viper.GetBool("ALLOW_CREDENTIALS"),
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive durations")
	}

	return cfg, nil
}
