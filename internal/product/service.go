package product

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRemover deletes stored upload paths best-effort; *upload.Saver satisfies it.
type FileRemover interface {
	Remove(paths []string)
}

type Service struct {
	repo  Repository
	files FileRemover
}

func NewService(repo Repository, files FileRemover) *Service {
	return &Service{repo: repo, files: files}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Product, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists the record as a single unit. The caller owns
// cleanup of uploaded files on failure; at this point the record has already
// passed normalization.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if verr := Validate(p); verr != nil {
		return Product{}, verr
	}
	return s.repo.Create(ctx, p)
}

// UpdateRequest is a partial product update. String and numeric fields follow
// the catalog's long-standing merge rule: zero values mean "not provided" and
// leave the stored value alone, so a price can never legitimately be updated
// to 0. Boolean fields use pointers and apply whenever present, including
// false.
type UpdateRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory"`
	Price          float64         `json:"price"`
	MonthlyPayment float64         `json:"monthlyPayment"`
	Materials      []string        `json:"materials"`
	Dimensions     *Dimensions     `json:"dimensions"`
	IsNew          *bool           `json:"isNew"`
	IsPopular      *bool           `json:"isPopular"`
	InStock        *bool           `json:"inStock"`
	Specifications []Specification `json:"specifications"`

	// NewImages holds paths freshly written by the upload middleware; they are
	// appended to the stored images list.
	NewImages []string `json:"-"`
}

// Update loads the record, merges the provided fields and persists the result.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req UpdateRequest) (Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	merged := applyUpdate(existing, req)
	if verr := Validate(merged); verr != nil {
		return Product{}, verr
	}
	return s.repo.Update(ctx, id, merged)
}

// Delete removes the record and then its image files. File deletion is
// best-effort per file: a missing or undeletable image never fails the
// operation.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.files.Remove(existing.Images)
	return nil
}

func applyUpdate(p Product, req UpdateRequest) Product {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Subcategory != "" {
		p.Subcategory = req.Subcategory
	}
	if req.Price != 0 {
		p.Price = req.Price
	}
	if req.MonthlyPayment != 0 {
		p.MonthlyPayment = req.MonthlyPayment
	}
	if len(req.Materials) > 0 {
		p.Materials = req.Materials
	}
	if req.Dimensions != nil {
		p.Dimensions = *req.Dimensions
	}
	if req.IsNew != nil {
		p.IsNew = *req.IsNew
	}
	if req.IsPopular != nil {
		p.IsPopular = *req.IsPopular
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	if len(req.Specifications) > 0 {
		p.Specifications = req.Specifications
	}
	if len(req.NewImages) > 0 {
		p.Images = append(p.Images, req.NewImages...)
	}
	p.UpdatedAt = time.Now().UTC()
	return p
}
