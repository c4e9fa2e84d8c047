package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))

	created, err := service.Register(context.Background(), User{
		Name:     "Manager",
		Email:    "  Manager@Shop.COM ",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if created.Email != "manager@shop.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.Password == "secret123" {
		t.Fatalf("raw password stored")
	}
	if bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")) != nil {
		t.Fatalf("stored hash does not match the raw password")
	}
	if !created.IsActive {
		t.Fatalf("new accounts must be active")
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))

	_, err := service.Register(context.Background(), User{Name: "X", Email: "x@shop.com", Password: "12345"})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))
	ctx := context.Background()

	if _, err := service.Register(ctx, User{Name: "A", Email: "dup@shop.com", Password: "secret123"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// same address in different case must still collide
	_, err := service.Register(ctx, User{Name: "B", Email: "DUP@shop.com", Password: "secret123"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	ctx := context.Background()

	if _, err := service.Register(ctx, User{Name: "A", Email: "a@shop.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := service.Authenticate(ctx, "A@shop.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.LastLogin == nil {
		t.Fatalf("lastLogin not stamped")
	}

	if _, err := service.Authenticate(ctx, "a@shop.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := service.Authenticate(ctx, "nobody@shop.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	ctx := context.Background()

	created, err := service.Register(ctx, User{Name: "A", Email: "a@shop.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := service.CreatePasswordReset(ctx, "A@shop.com")
	if err != nil {
		t.Fatalf("create reset: %v", err)
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	if stored.ResetPasswordToken == "" || stored.ResetPasswordToken == token {
		t.Fatalf("only the token hash may be stored, got %q", stored.ResetPasswordToken)
	}
	if stored.ResetPasswordExpire == nil {
		t.Fatalf("expiry not set")
	}

	if _, err := service.ResetPassword(ctx, "wrong-token", "new-secret"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for an unknown token, got %v", err)
	}
	if _, err := service.ResetPassword(ctx, token, "123"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if _, err := service.ResetPassword(ctx, token, "new-secret"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := service.Authenticate(ctx, "a@shop.com", "new-secret"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := service.Authenticate(ctx, "a@shop.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}

	// single use: a consumed token cannot reset again
	if _, err := service.ResetPassword(ctx, token, "third-secret"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken after consumption, got %v", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	ctx := context.Background()

	created, err := service.Register(ctx, User{Name: "A", Email: "a@shop.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := service.CreatePasswordReset(ctx, "a@shop.com")
	if err != nil {
		t.Fatalf("create reset: %v", err)
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	past := time.Now().UTC().Add(-time.Minute)
	stored.ResetPasswordExpire = &past
	if _, err := repo.Update(ctx, created.ID, stored); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := service.ResetPassword(ctx, token, "new-secret"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for an expired token, got %v", err)
	}
}

// Self-service profile updates must not be able to change account flags.
func TestUpdateProfile_IgnoresAccountFlags(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	ctx := context.Background()

	created, err := service.Register(ctx, User{Name: "A", Email: "a@shop.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	wantAdmin := true
	wantInactive := false
	updated, err := service.UpdateProfile(ctx, created.ID, UpdateRequest{
		Name:     "Renamed",
		IsAdmin:  &wantAdmin,
		IsActive: &wantInactive,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.IsAdmin {
		t.Fatalf("profile update must not grant admin")
	}
	if !updated.IsActive {
		t.Fatalf("profile update must not deactivate the account")
	}
	if updated.Name != "Renamed" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
}

// The stored hash must only change when a new password is provided.
func TestUpdate_RehashOnlyOnNewPassword(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	ctx := context.Background()

	created, err := service.Register(ctx, User{Name: "A", Email: "a@shop.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := service.Update(ctx, created.ID, UpdateRequest{Name: "Renamed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Password != created.Password {
		t.Fatalf("hash changed without a new password")
	}

	updated, err = service.Update(ctx, created.ID, UpdateRequest{Password: "another-secret"})
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if updated.Password == created.Password {
		t.Fatalf("hash not recomputed for the new password")
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("another-secret")) != nil {
		t.Fatalf("new hash does not match the new password")
	}

	if _, err := service.Update(ctx, created.ID, UpdateRequest{Password: "123"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}
