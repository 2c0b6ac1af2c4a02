package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	myPostgresRepo "github.com/picstream/auth-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/picstream/auth-service/internal/adapters/db/redis"
	"github.com/picstream/auth-service/internal/adapters/mail"
	"github.com/picstream/auth-service/internal/adapters/oauth/google"
	s3storage "github.com/picstream/auth-service/internal/adapters/storage/s3"
	transport "github.com/picstream/auth-service/internal/adapters/transport/http"
	"github.com/picstream/auth-service/internal/app/auth/jwt"
	authsvc "github.com/picstream/auth-service/internal/app/auth/service"
	userssvc "github.com/picstream/auth-service/internal/app/users/service"
	"github.com/picstream/auth-service/internal/infra/config"
	lg "github.com/picstream/auth-service/internal/infra/log"
	"github.com/picstream/auth-service/internal/infra/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := validator.New()
	_ = validate.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		pwd := fl.Field().String()
		if len(pwd) < 8 {
			return false
		}
		var hasUpper, hasDigit bool
		for _, r := range pwd {
			if unicode.IsUpper(r) {
				hasUpper = true
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
		return utf8.RuneCountInString(pwd) >= 8 && hasUpper && hasDigit
	})

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	profileRepo := myPostgresRepo.NewPostgresProfileRepo(db)
	sessionRepo := myRedisRepo.NewRedisSessionRepo(redisCli)

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	mailer := mail.NewSMTPMailer(cfg)

	avatarStorage, err := s3storage.New(context.Background(), cfg)
	if err != nil {
		zapLog.Fatal("failed to init object storage", zap.Error(err))
	}

	googleClient := google.New(cfg)

	auth := authsvc.New(userRepo, sessionRepo, jwtUtil, mailer, cfg, validate, zapLog)
	users := userssvc.New(profileRepo, avatarStorage, validate)

	handler := transport.NewHandler(auth, users, googleClient, cfg, zapLog)
	router := transport.NewRouter(handler, zapLog)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		var err error
		if cfg.HTTPSCertFile != "" && cfg.HTTPSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
