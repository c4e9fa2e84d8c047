package banner

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "banners"

// prioritySort orders banners by priority descending, then newest first.
var prioritySort = bson.D{{Key: "priority", Value: -1}, {Key: "createdAt", Value: -1}}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(collectionName)}
}

func (r *MongoRepository) List(ctx context.Context, q Query) ([]Banner, error) {
	cursor, err := r.col.Find(ctx, q.Filter(), options.Find().SetSort(prioritySort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]Banner, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) ActiveByPosition(ctx context.Context, position string, now time.Time) ([]Banner, error) {
	filter := bson.M{
		"position":  position,
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(prioritySort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]Banner, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (Banner, error) {
	var b Banner
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Banner{}, ErrNotFound
		}
		return Banner{}, err
	}
	return b, nil
}

func (r *MongoRepository) Create(ctx context.Context, b Banner) (Banner, error) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return Banner{}, err
	}
	return b, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, b Banner) (Banner, error) {
	b.ID = id
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, b)
	if err != nil {
		return Banner{}, err
	}
	if result.MatchedCount == 0 {
		return Banner{}, ErrNotFound
	}
	return b, nil
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
