// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campushub/campushub/internal/app/system/normalize"
	"github.com/campushub/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateClubName = errors.New("a club with this name already exists")
	ErrEmptyClubName     = errors.New("club name is required")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clubs")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Club, error) {
	var c models.Club
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Club{}, err
	}
	return c, nil
}

// GetByName resolves a club by its exact name. Subscriptions and
// announcements reference clubs by name, so this is the hot lookup.
func (s *Store) GetByName(ctx context.Context, name string) (models.Club, error) {
	var c models.Club
	if err := s.c.FindOne(ctx, bson.M{"name": normalize.ClubName(name)}).Decode(&c); err != nil {
		return models.Club{}, err
	}
	return c, nil
}

// Exists reports whether a club with the exact name exists.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name": normalize.ClubName(name)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

func (s *Store) Create(ctx context.Context, c models.Club) (models.Club, error) {
	c.Name = normalize.ClubName(c.Name)
	if c.Name == "" {
		return models.Club{}, ErrEmptyClubName
	}

	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.NameCI = text.Fold(c.Name)
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, c)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Club{}, ErrDuplicateClubName
		}
		return models.Club{}, err
	}
	return c, nil
}

// UpdateDescription changes a club's description. The name is a join key
// into user subscription sets and announcement documents, so it stays fixed
// after creation.
func (s *Store) UpdateDescription(ctx context.Context, id primitive.ObjectID, desc string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"description": strings.TrimSpace(desc),
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a club by ID. Returns the number of documents deleted (0 or 1).
// Callers are expected to also clear the name from user subscription sets.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns all clubs sorted by folded name.
func (s *Store) List(ctx context.Context) ([]models.Club, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var clubs []models.Club
	if err := cur.All(ctx, &clubs); err != nil {
		return nil, err
	}
	if clubs == nil {
		clubs = []models.Club{}
	}
	return clubs, nil
}

// Count returns the total number of clubs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
