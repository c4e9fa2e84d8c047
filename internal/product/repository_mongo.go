package product

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "products"

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(collectionName)}
}

func (r *MongoRepository) List(ctx context.Context, q ListQuery) ([]Product, error) {
	opts := options.Find().SetSort(q.SortSpec())
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.col.Find(ctx, q.Filter(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]Product, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (Product, error) {
	var p Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *MongoRepository) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, p Product) (Product, error) {
	p.ID = id
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, p)
	if err != nil {
		return Product{}, err
	}
	if result.MatchedCount == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
