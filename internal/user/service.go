package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = 10 * time.Minute
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates an account from a raw password. Emails are stored
// lowercased so lookups are case-insensitive.
func (s *Service) Register(ctx context.Context, u User) (User, error) {
	u.Email = normalizeEmail(u.Email)

	if len(u.Password) < minPasswordLength {
		return User{}, ErrPasswordTooShort
	}

	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u.Password = string(hashed)
	u.IsActive = true

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	return s.repo.Create(ctx, u)
}

// Authenticate checks credentials and stamps lastLogin on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	u.LastLogin = &now
	if updated, err := s.repo.Update(ctx, u.ID, u); err == nil {
		u = updated
	}
	return u, nil
}

// UpdateRequest is a partial account update. The password hash is recomputed
// only when a new raw password is provided.
type UpdateRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Phone    string   `json:"phone"`
	Address  *Address `json:"address"`
	IsAdmin  *bool    `json:"isAdmin"`
	IsActive *bool    `json:"isActive"`
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req UpdateRequest) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = normalizeEmail(req.Email)
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Address != nil {
		u.Address = *req.Address
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			return User{}, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.Password = string(hashed)
	}

	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, id, u)
}

// UpdateProfile applies a self-service update. The account flags stay whatever
// they were, regardless of the payload.
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, req UpdateRequest) (User, error) {
	req.IsAdmin = nil
	req.IsActive = nil
	return s.Update(ctx, id, req)
}

// CreatePasswordReset stores a hashed single-use token on the account and
// returns the raw token. Only the hash is persisted, so a database snapshot
// alone cannot be replayed against the reset endpoint.
func (s *Service) CreatePasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	now := time.Now().UTC()
	expire := now.Add(resetTokenTTL)
	u.ResetPasswordToken = hashResetToken(token)
	u.ResetPasswordExpire = &expire
	u.UpdatedAt = now
	if _, err := s.repo.Update(ctx, u.ID, u); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes the token: it must match a stored hash and still be
// within its expiry window. On success the password is replaced and the token
// cleared so it cannot be used twice.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (User, error) {
	u, err := s.repo.GetByResetToken(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidResetToken
		}
		return User{}, err
	}
	if u.ResetPasswordExpire == nil || time.Now().UTC().After(*u.ResetPasswordExpire) {
		return User{}, ErrInvalidResetToken
	}

	if len(password) < minPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u.Password = string(hashed)
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u.ID, u)
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
