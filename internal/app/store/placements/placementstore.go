// internal/app/store/placements/placementstore.go
package placementstore

import (
	"context"
	"errors"
	"time"

	"github.com/campushub/campushub/internal/app/system/normalize"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrEmptyCompany = errors.New("placement company is required")
	ErrBadMinYear   = errors.New("minimum year must be between 1 and 4")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("placements")}
}

func (s *Store) Create(ctx context.Context, p models.Placement) (models.Placement, error) {
	p.Company = normalize.Name(p.Company)
	if p.Company == "" {
		return models.Placement{}, ErrEmptyCompany
	}
	if p.MinYear < 0 || p.MinYear > 4 {
		return models.Placement{}, ErrBadMinYear
	}

	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Placement{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Placement, error) {
	var p models.Placement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Placement{}, err
	}
	return p, nil
}

// List returns placement drives with the nearest deadline first. When
// openOnly is set, drives whose deadline has passed are excluded.
func (s *Store) List(ctx context.Context, openOnly bool, now time.Time) ([]models.Placement, error) {
	filter := bson.M{}
	if openOnly {
		filter["deadline"] = bson.M{"$gte": now}
	}
	opts := options.Find().SetSort(bson.D{{Key: "deadline", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var drives []models.Placement
	if err := cur.All(ctx, &drives); err != nil {
		return nil, err
	}
	if drives == nil {
		drives = []models.Placement{}
	}
	return drives, nil
}

// Delete removes a placement drive by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
