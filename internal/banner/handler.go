package banner

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/BrezzeT/mebel-market-backend/internal/upload"
)

// FileRemover deletes stored upload paths best-effort; *upload.Saver satisfies it.
type FileRemover interface {
	Remove(paths []string)
}

type Handler struct {
	service *Service
	files   FileRemover
	logger  *zap.Logger
	dev     bool
}

func NewHandler(service *Service, files FileRemover, logger *zap.Logger, dev bool) *Handler {
	return &Handler{service: service, files: files, logger: logger, dev: dev}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/", h.list)
	r.Get("/position/:position", h.listByPosition)
	r.Get("/:id", h.get)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, uploadImage fiber.Handler) {
	r.Post("/", uploadImage, h.create)
	r.Put("/:id", uploadImage, h.update)
	r.Delete("/:id", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	q := Query{
		Position: c.Query("position"),
		Type:     c.Query("type"),
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		q.IsActive = &active
	}

	banners, err := h.service.List(c.Context(), q)
	if err != nil {
		return h.internalError(c, "failed to list banners", err)
	}
	return c.JSON(banners)
}

// listByPosition serves the storefront: only banners that are switched on and
// whose date window covers the current moment.
func (h *Handler) listByPosition(c *fiber.Ctx) error {
	banners, err := h.service.ActiveByPosition(c.Context(), c.Params("position"))
	if err != nil {
		return h.internalError(c, "failed to list banners", err)
	}
	return c.JSON(banners)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid banner id"})
	}

	b, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Banner not found"})
		}
		return h.internalError(c, "failed to load banner", err)
	}
	return c.JSON(b)
}

func (h *Handler) create(c *fiber.Ctx) error {
	uploaded := upload.FromCtx(c)
	persisted := false
	defer func() {
		if !persisted {
			h.files.Remove(uploaded)
		}
	}()

	req, verr := requestFromCtx(c)
	if verr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": verr})
	}
	if len(uploaded) > 0 {
		req.Image = uploaded[0]
	}

	b := Banner{
		Title:           req.Title,
		Description:     req.Description,
		Image:           req.Image,
		Link:            req.Link,
		Position:        req.Position,
		IsActive:        true,
		Priority:        0,
		Type:            req.Type,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		ButtonText:      req.ButtonText,
		ButtonColor:     req.ButtonColor,
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		b.Priority = *req.Priority
	}
	if req.StartDate != nil {
		b.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		b.EndDate = *req.EndDate
	}

	if details := Validate(b); details != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "banner validation failed",
			"details": details,
		})
	}

	created, err := h.service.Create(c.Context(), b)
	if err != nil {
		return h.internalError(c, "failed to create banner", err)
	}

	persisted = true
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid banner id"})
	}

	uploaded := upload.FromCtx(c)
	persisted := false
	defer func() {
		if !persisted {
			h.files.Remove(uploaded)
		}
	}()

	req, verr := requestFromCtx(c)
	if verr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": verr})
	}
	if len(uploaded) > 0 {
		req.Image = uploaded[0]
	}

	updated, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Banner not found"})
		}
		var v *ValidationError
		if errors.As(err, &v) {
			return c.Status(fiber.StatusBadRequest).JSON(v)
		}
		return h.internalError(c, "failed to update banner", err)
	}

	persisted = true
	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid banner id"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Banner not found"})
		}
		return h.internalError(c, "failed to delete banner", err)
	}
	return c.JSON(fiber.Map{"message": "Banner removed"})
}

// requestFromCtx accepts either a JSON body or a multipart form (the admin
// panel posts the banner fields next to the image part).
func requestFromCtx(c *fiber.Ctx) (UpdateRequest, string) {
	var req UpdateRequest

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		req.Title = c.FormValue("title")
		req.Description = c.FormValue("description")
		req.Image = c.FormValue("image")
		req.Link = c.FormValue("link")
		req.Position = c.FormValue("position")
		req.Type = c.FormValue("type")
		req.BackgroundColor = c.FormValue("backgroundColor")
		req.TextColor = c.FormValue("textColor")
		req.ButtonText = c.FormValue("buttonText")
		req.ButtonColor = c.FormValue("buttonColor")

		if v := c.FormValue("isActive"); v != "" {
			if active, err := strconv.ParseBool(v); err == nil {
				req.IsActive = &active
			}
		}
		if v := c.FormValue("priority"); v != "" {
			priority, err := strconv.Atoi(v)
			if err != nil {
				return UpdateRequest{}, "priority must be a number"
			}
			req.Priority = &priority
		}
		for _, m := range []struct {
			key  string
			dest **time.Time
		}{
			{"startDate", &req.StartDate},
			{"endDate", &req.EndDate},
		} {
			if v := c.FormValue(m.key); v != "" {
				parsed, err := parseDate(v)
				if err != nil {
					return UpdateRequest{}, m.key + " must be a valid date"
				}
				*m.dest = &parsed
			}
		}
		return req, ""
	}

	if err := c.BodyParser(&req); err != nil {
		return UpdateRequest{}, "invalid request body"
	}
	return req, ""
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (h *Handler) internalError(c *fiber.Ctx, message string, err error) error {
	h.logger.Error(message, zap.Error(err))
	body := fiber.Map{"message": message}
	if h.dev {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
