package auth

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func TestIssueAndProtect(t *testing.T) {
	tokens := NewTokens(testSecret)
	token, err := tokens.Issue("64f1c0ffee0000000000abcd", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	app := fiber.New()
	app.Get("/me", Protect(testSecret), func(c *fiber.Ctx) error {
		id, err := UserIDFromCtx(c)
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"id": id, "isAdmin": IsAdminFromCtx(c)})
	})

	// no token
	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}

	// garbage token
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", res.StatusCode)
	}

	// valid token round-trips the claims
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for a valid token, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "64f1c0ffee0000000000abcd") || !strings.Contains(string(b), "true") {
		t.Fatalf("claims did not round-trip: %s", b)
	}
}

func TestProtect_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokens("other-secret").Issue("id", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	app := fiber.New()
	app.Get("/me", Protect(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a token signed with another secret, got %d", res.StatusCode)
	}
}

func TestAdminOnly(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Admin"); v != "" {
			claims := jwt.MapClaims{"user_id": "u1", "is_admin": v == "true"}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	app.Get("/admin", AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		header string
		want   int
	}{
		{"", fiber.StatusForbidden},
		{"false", fiber.StatusForbidden},
		{"true", fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/admin", nil)
		if tc.header != "" {
			req.Header.Set("X-Admin", tc.header)
		}
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != tc.want {
			t.Fatalf("X-Admin=%q: expected %d, got %d", tc.header, tc.want, res.StatusCode)
		}
	}
}
