package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"

	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
)

func TestPostgresProfileRepo_GetMissing(t *testing.T) {
	repo := NewPostgresProfileRepo(setupDB(t))
	if _, err := repo.GetProfile(context.Background(), uuid.New()); !customErrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresProfileRepo_Upsert(t *testing.T) {
	repo := NewPostgresProfileRepo(setupDB(t))
	ctx := context.Background()
	userID := uuid.New()

	saved, err := repo.UpsertProfile(ctx, model.Profile{UserID: userID, Name: "Alice", City: "Riga"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.Name != "Alice" {
		t.Fatalf("insert returned %q", saved.Name)
	}

	// same user id again: update in place, not a second row
	saved, err = repo.UpsertProfile(ctx, model.Profile{UserID: userID, Name: "Alice", City: "Tallinn"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.City != "Tallinn" {
		t.Fatalf("city not updated, got %q", got.City)
	}
}

func TestPostgresProfileRepo_UpdatePhoto(t *testing.T) {
	repo := NewPostgresProfileRepo(setupDB(t))
	ctx := context.Background()
	userID := uuid.New()

	// photo update on a user without a profile row creates one
	if err := repo.UpdateProfilePhoto(ctx, userID, "https://cdn.example.com/a.png"); err != nil {
		t.Fatalf("photo insert: %v", err)
	}
	got, err := repo.GetProfile(ctx, userID)
	if err != nil || got.Photo != "https://cdn.example.com/a.png" {
		t.Fatalf("photo not stored: %v %q", err, got.Photo)
	}

	if _, err := repo.UpsertProfile(ctx, model.Profile{UserID: userID, Name: "Bob", Photo: got.Photo}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpdateProfilePhoto(ctx, userID, "https://cdn.example.com/b.png"); err != nil {
		t.Fatalf("photo update: %v", err)
	}

	got, err = repo.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Photo != "https://cdn.example.com/b.png" {
		t.Fatalf("photo not replaced, got %q", got.Photo)
	}
	if got.Name != "Bob" {
		t.Fatalf("photo update must not touch other fields, name %q", got.Name)
	}
}
