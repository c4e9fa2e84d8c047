package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

var ErrNoToken = errors.New("no token in request context")

const tokenTTL = 30 * 24 * time.Hour

// Tokens issues and reads the stateless bearer tokens used by the admin API.
// Every request is authenticated independently; nothing is stored server-side.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

func (t *Tokens) Issue(userID string, isAdmin bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// UserIDFromCtx extracts the user_id claim from the token the jwt middleware
// stored in locals. Returns ErrNoToken when the middleware did not run or the
// claim is missing.
func UserIDFromCtx(c *fiber.Ctx) (string, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return "", err
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", ErrNoToken
	}
	return id, nil
}

// IsAdminFromCtx reports whether the verified token carries the admin claim.
func IsAdminFromCtx(c *fiber.Ctx) bool {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return false
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return isAdmin
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoToken
	}
	return claims, nil
}
