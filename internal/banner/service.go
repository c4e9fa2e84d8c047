package banner

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, q Query) ([]Banner, error) {
	return s.repo.List(ctx, q)
}

// ActiveByPosition returns the banners currently visible for a position.
func (s *Service) ActiveByPosition(ctx context.Context, position string) ([]Banner, error) {
	return s.repo.ActiveByPosition(ctx, position, s.now().UTC())
}

func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (Banner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, b Banner) (Banner, error) {
	now := s.now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return s.repo.Create(ctx, b)
}

// UpdateRequest is a partial banner update. Text fields follow the same merge
// rule as products (empty means "not provided"); IsActive and Priority use
// pointers so false and 0 can be applied.
type UpdateRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Image           string     `json:"image"`
	Link            string     `json:"link"`
	Position        string     `json:"position"`
	IsActive        *bool      `json:"isActive"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	Priority        *int       `json:"priority"`
	Type            string     `json:"type"`
	BackgroundColor string     `json:"backgroundColor"`
	TextColor       string     `json:"textColor"`
	ButtonText      string     `json:"buttonText"`
	ButtonColor     string     `json:"buttonColor"`
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req UpdateRequest) (Banner, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Banner{}, err
	}

	merged := applyUpdate(existing, req)
	if details := Validate(merged); details != nil {
		return Banner{}, &ValidationError{Message: "banner validation failed", Fields: details}
	}
	merged.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, id, merged)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

func applyUpdate(b Banner, req UpdateRequest) Banner {
	if req.Title != "" {
		b.Title = req.Title
	}
	if req.Description != "" {
		b.Description = req.Description
	}
	if req.Image != "" {
		b.Image = req.Image
	}
	if req.Link != "" {
		b.Link = req.Link
	}
	if req.Position != "" {
		b.Position = req.Position
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		b.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		b.EndDate = *req.EndDate
	}
	if req.Priority != nil {
		b.Priority = *req.Priority
	}
	if req.Type != "" {
		b.Type = req.Type
	}
	if req.BackgroundColor != "" {
		b.BackgroundColor = req.BackgroundColor
	}
	if req.TextColor != "" {
		b.TextColor = req.TextColor
	}
	if req.ButtonText != "" {
		b.ButtonText = req.ButtonText
	}
	if req.ButtonColor != "" {
		b.ButtonColor = req.ButtonColor
	}
	return b
}
