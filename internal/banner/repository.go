package banner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("banner not found")

// Query filters the admin banner listing.
type Query struct {
	Position string
	Type     string
	IsActive *bool
}

func (q Query) Filter() bson.M {
	filter := bson.M{}
	if q.Position != "" {
		filter["position"] = q.Position
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.IsActive != nil {
		filter["isActive"] = *q.IsActive
	}
	return filter
}

func (q Query) Matches(b Banner) bool {
	if q.Position != "" && b.Position != q.Position {
		return false
	}
	if q.Type != "" && b.Type != q.Type {
		return false
	}
	if q.IsActive != nil && b.IsActive != *q.IsActive {
		return false
	}
	return true
}

type Repository interface {
	List(ctx context.Context, q Query) ([]Banner, error)
	// ActiveByPosition returns the banners visible at the given moment for a
	// position, highest priority first.
	ActiveByPosition(ctx context.Context, position string, now time.Time) ([]Banner, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (Banner, error)
	Create(ctx context.Context, b Banner) (Banner, error)
	Update(ctx context.Context, id primitive.ObjectID, b Banner) (Banner, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Banner
}

func NewInMemoryRepository(seed []Banner) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Banner, 0, len(seed))}
	for _, b := range seed {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		r.storage = append(r.storage, b)
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, q Query) ([]Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Banner, 0, len(r.storage))
	for _, b := range r.storage {
		if q.Matches(b) {
			out = append(out, b)
		}
	}
	sortBanners(out)
	return out, nil
}

func (r *InMemoryRepository) ActiveByPosition(_ context.Context, position string, now time.Time) ([]Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Banner, 0)
	for _, b := range r.storage {
		if b.Position == position && b.ActiveAt(now) {
			out = append(out, b)
		}
	}
	sortBanners(out)
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id primitive.ObjectID) (Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.storage {
		if b.ID == id {
			return b, nil
		}
	}
	return Banner{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, b Banner) (Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	r.storage = append(r.storage, b)
	return b, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id primitive.ObjectID, b Banner) (Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID == id {
			b.ID = id
			r.storage[i] = b
			return b, nil
		}
	}
	return Banner{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// sortBanners orders by priority descending, then newest first.
func sortBanners(banners []Banner) {
	sort.SliceStable(banners, func(i, j int) bool {
		if banners[i].Priority != banners[j].Priority {
			return banners[i].Priority > banners[j].Priority
		}
		return banners[i].CreatedAt.After(banners[j].CreatedAt)
	})
}
