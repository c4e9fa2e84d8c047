package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/BrezzeT/mebel-market-backend/internal/auth"
)

type Handler struct {
	service *Service
	tokens  *auth.Tokens
	logger  *zap.Logger
	dev     bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
	IsAdmin  bool    `json:"isAdmin"`
}

func NewHandler(service *Service, tokens *auth.Tokens, logger *zap.Logger, dev bool) *Handler {
	return &Handler{service: service, tokens: tokens, logger: logger, dev: dev}
}

// RegisterUserRoutes wires /api/users: the admin-panel login plus the profile
// endpoint (protect guards the latter).
func (h *Handler) RegisterUserRoutes(r fiber.Router, protect fiber.Handler) {
	r.Post("/login", h.adminLogin)
	r.Get("/profile", protect, h.profile)
}

// RegisterAuthRoutes wires /api/auth: login and password reset, the
// self-service profile, and admin-only account management. Public routes are
// registered before the admin group so its gate never shadows them.
func (h *Handler) RegisterAuthRoutes(r fiber.Router, protect, adminOnly fiber.Handler) {
	r.Post("/login", h.login)
	r.Post("/forgotpassword", h.forgotPassword)
	r.Put("/resetpassword/:resettoken", h.resetPassword)
	r.Get("/profile", protect, h.profile)
	r.Put("/profile", protect, h.updateProfile)

	admin := r.Group("", protect, adminOnly)
	admin.Post("/register", h.register)
	admin.Get("/users", h.list)
	admin.Get("/users/:id", h.get)
	admin.Put("/users/:id", h.update)
	admin.Delete("/users/:id", h.delete)
}

// adminLogin is the admin-panel entry point: valid credentials without the
// admin flag are rejected with 403.
func (h *Handler) adminLogin(c *fiber.Ctx) error {
	u, err := h.authenticate(c)
	if err != nil {
		return h.loginError(c, err)
	}
	if !u.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized as admin"})
	}
	return h.loginResponse(c, u)
}

func (h *Handler) login(c *fiber.Ctx) error {
	u, err := h.authenticate(c)
	if err != nil {
		return h.loginError(c, err)
	}
	return h.loginResponse(c, u)
}

func (h *Handler) authenticate(c *fiber.Ctx) (User, error) {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return User{}, errors.New("invalid request body")
	}
	if payload.Email == "" || payload.Password == "" {
		return User{}, errors.New("email and password are required")
	}
	return h.service.Authenticate(c.Context(), payload.Email, payload.Password)
}

func (h *Handler) loginError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
}

func (h *Handler) loginResponse(c *fiber.Ctx, u User) error {
	token, err := h.tokens.Issue(u.ID.Hex(), u.IsAdmin)
	if err != nil {
		return h.internalError(c, "failed to generate token", err)
	}

	return c.JSON(fiber.Map{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"isAdmin": u.IsAdmin,
		"token":   token,
	})
}

func (h *Handler) profile(c *fiber.Ctx) error {
	id, err := userIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	u, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return h.internalError(c, "failed to load profile", err)
	}

	return c.JSON(fiber.Map{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"isAdmin": u.IsAdmin,
	})
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	id, err := userIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}

	updated, err := h.service.UpdateProfile(c.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		case errors.Is(err, ErrEmailExists), errors.Is(err, ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return h.internalError(c, "failed to update profile", err)
		}
	}
	return c.JSON(sanitizeUser(updated))
}

// forgotPassword issues a reset token for the account. No mail transport is
// wired, so the token travels back in the response body for the caller to
// deliver.
func (h *Handler) forgotPassword(c *fiber.Ctx) error {
	payload := new(forgotPasswordRequest)
	if err := c.BodyParser(payload); err != nil || payload.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email is required"})
	}

	token, err := h.service.CreatePasswordReset(c.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return h.internalError(c, "failed to create reset token", err)
	}

	return c.JSON(fiber.Map{"message": "Reset token generated", "resetToken": token})
}

func (h *Handler) resetPassword(c *fiber.Ctx) error {
	payload := new(resetPasswordRequest)
	if err := c.BodyParser(payload); err != nil || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "password is required"})
	}

	u, err := h.service.ResetPassword(c.Context(), c.Params("resettoken"), payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidResetToken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid or expired reset token"})
		case errors.Is(err, ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return h.internalError(c, "failed to reset password", err)
		}
	}
	return h.loginResponse(c, u)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, email and password are required"})
	}

	created, err := h.service.Register(c.Context(), User{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
		Address:  payload.Address,
		IsAdmin:  payload.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already exists"})
		case errors.Is(err, ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return h.internalError(c, "failed to register user", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(sanitizeUser(created))
}

func (h *Handler) list(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, "failed to list users", err)
	}

	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, sanitizeUser(u))
	}
	return c.JSON(out)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
	}

	u, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return h.internalError(c, "failed to load user", err)
	}
	return c.JSON(sanitizeUser(u))
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}

	updated, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		case errors.Is(err, ErrEmailExists), errors.Is(err, ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return h.internalError(c, "failed to update user", err)
		}
	}
	return c.JSON(sanitizeUser(updated))
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return h.internalError(c, "failed to delete user", err)
	}
	return c.JSON(fiber.Map{"message": "User removed"})
}

func userIDFromToken(c *fiber.Ctx) (primitive.ObjectID, error) {
	hex, err := auth.UserIDFromCtx(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(hex)
}

func (h *Handler) internalError(c *fiber.Ctx, message string, err error) error {
	h.logger.Error(message, zap.Error(err))
	body := fiber.Map{"message": message}
	if h.dev {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
