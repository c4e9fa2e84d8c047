package product

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id primitive.ObjectID, p Product) (Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local seeding.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product

	// FailCreate makes Create return the given error, simulating a
	// persistence failure after files were already uploaded.
	FailCreate error
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Product, 0, len(seed))}
	for _, p := range seed {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.storage = append(r.storage, p)
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, q ListQuery) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, len(r.storage))
	copy(out, r.storage)
	return q.Apply(out), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id primitive.ObjectID) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate != nil {
		return Product{}, r.FailCreate
	}

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id primitive.ObjectID, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID == id {
			p.ID = id
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
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
