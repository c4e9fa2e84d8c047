package product

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/BrezzeT/mebel-market-backend/internal/upload"
)

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
	r.Get("/new", h.listNew)
	r.Get("/popular", h.listPopular)
	r.Get("/category/:category", h.listByCategory)
	r.Get("/:id", h.get)
}

// RegisterAdminRoutes wires the mutation endpoints; the caller passes a router
// already behind the auth gate plus the upload middleware for this resource.
func (h *Handler) RegisterAdminRoutes(r fiber.Router, uploadImages fiber.Handler) {
	r.Post("/", uploadImages, h.create)
	r.Put("/:id", uploadImages, h.update)
	r.Delete("/:id", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	q := ListQuery{
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Material:    c.Query("material"),
		IsNew:       c.Query("isNew") == "true",
		IsPopular:   c.Query("isPopular") == "true",
		Search:      c.Query("search"),
		Sort:        c.Query("sort"),
	}
	if limit, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && limit > 0 {
		q.Limit = limit
	}

	products, err := h.service.List(c.Context(), q)
	if err != nil {
		return h.internalError(c, "failed to list products", err)
	}
	return c.JSON(products)
}

func (h *Handler) listNew(c *fiber.Ctx) error {
	products, err := h.service.List(c.Context(), ListQuery{IsNew: true})
	if err != nil {
		return h.internalError(c, "failed to list products", err)
	}
	return c.JSON(products)
}

func (h *Handler) listPopular(c *fiber.Ctx) error {
	products, err := h.service.List(c.Context(), ListQuery{IsPopular: true})
	if err != nil {
		return h.internalError(c, "failed to list products", err)
	}
	return c.JSON(products)
}

func (h *Handler) listByCategory(c *fiber.Ctx) error {
	products, err := h.service.List(c.Context(), ListQuery{Category: c.Params("category")})
	if err != nil {
		return h.internalError(c, "failed to list products", err)
	}
	return c.JSON(products)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return h.internalError(c, "failed to load product", err)
	}
	return c.JSON(p)
}

// create normalizes the multipart form into a record and persists it. The
// upload middleware already wrote the image files, so any failure from here on
// removes them before reporting the original error.
func (h *Handler) create(c *fiber.Ctx) error {
	uploaded := upload.FromCtx(c)

	persisted := false
	defer func() {
		if !persisted {
			h.files.Remove(uploaded)
		}
	}()

	raw := rawFormFromCtx(c, uploaded)
	p, verr := NormalizeForm(raw)
	if verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}

	created, err := h.service.Create(c.Context(), p)
	if err != nil {
		var v *ValidationError
		if errors.As(err, &v) {
			return c.Status(fiber.StatusBadRequest).JSON(v)
		}
		return h.internalError(c, "failed to create product", err)
	}

	persisted = true
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	uploaded := upload.FromCtx(c)
	persisted := false
	defer func() {
		if !persisted {
			h.files.Remove(uploaded)
		}
	}()

	req, verr := h.updateRequestFromCtx(c)
	if verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	req.NewImages = uploaded

	updated, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		var v *ValidationError
		if errors.As(err, &v) {
			return c.Status(fiber.StatusBadRequest).JSON(v)
		}
		return h.internalError(c, "failed to update product", err)
	}

	persisted = true
	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return h.internalError(c, "failed to delete product", err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// updateRequestFromCtx accepts either a JSON body or a multipart form (the
// admin panel sends the latter, with materials/dimensions JSON-encoded).
func (h *Handler) updateRequestFromCtx(c *fiber.Ctx) (UpdateRequest, *ValidationError) {
	var req UpdateRequest

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		req.Name = c.FormValue("name")
		req.Description = c.FormValue("description")
		req.Category = c.FormValue("category")
		req.Subcategory = c.FormValue("subcategory")

		if v := c.FormValue("price"); v != "" {
			price, err := strconv.ParseFloat(v, 64)
			if err != nil || price <= 0 {
				return UpdateRequest{}, newValidationError("price must be a positive number")
			}
			req.Price = price
		}
		if v := c.FormValue("monthlyPayment"); v != "" {
			monthly, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return UpdateRequest{}, newValidationError("monthlyPayment must be a number")
			}
			req.MonthlyPayment = monthly
		}
		if v := c.FormValue("materials"); v != "" {
			materials, verr := parseMaterials(v)
			if verr != nil {
				return UpdateRequest{}, verr
			}
			req.Materials = materials
		}
		if v := c.FormValue("dimensions"); v != "" {
			dims, verr := parseDimensions(v)
			if verr != nil {
				return UpdateRequest{}, verr
			}
			req.Dimensions = &dims
		}
		if v := c.FormValue("specifications"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Specifications); err != nil {
				return UpdateRequest{}, newValidationError("invalid specifications format")
			}
		}
		for _, m := range []struct {
			key  string
			dest **bool
		}{
			{"isNew", &req.IsNew},
			{"isPopular", &req.IsPopular},
			{"inStock", &req.InStock},
		} {
			if v := c.FormValue(m.key); v != "" {
				parsed, err := strconv.ParseBool(v)
				if err == nil {
					*m.dest = &parsed
				}
			}
		}
		return req, nil
	}

	if err := c.BodyParser(&req); err != nil {
		return UpdateRequest{}, newValidationError("invalid request body")
	}
	if len(req.Materials) > 0 {
		for _, m := range req.Materials {
			if !IsAllowedMaterial(m) {
				return UpdateRequest{}, newValidationError("invalid materials format", "unknown material: "+m)
			}
		}
	}
	return req, nil
}

func rawFormFromCtx(c *fiber.Ctx, images []string) RawForm {
	return RawForm{
		Name:           c.FormValue("name"),
		Category:       c.FormValue("category"),
		Subcategory:    c.FormValue("subcategory"),
		Description:    c.FormValue("description"),
		Price:          c.FormValue("price"),
		MonthlyPayment: c.FormValue("monthlyPayment"),
		Materials:      c.FormValue("materials"),
		Dimensions:     c.FormValue("dimensions"),
		Specifications: c.FormValue("specifications"),
		IsNew:          c.FormValue("isNew"),
		IsPopular:      c.FormValue("isPopular"),
		InStock:        c.FormValue("inStock"),
		Images:         images,
	}
}

func (h *Handler) internalError(c *fiber.Ctx, message string, err error) error {
	h.logger.Error(message, zap.Error(err))
	body := fiber.Map{"message": message}
	if h.dev {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
