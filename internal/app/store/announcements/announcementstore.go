// internal/app/store/announcements/announcementstore.go
package announcementstore

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
	ErrEmptyTitle = errors.New("announcement title is required")
	ErrEmptyClub  = errors.New("announcement club is required")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// Create inserts a new announcement. Announcements are immutable once
// posted; there is no update path.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	a.Title = normalize.Name(a.Title)
	a.Club = normalize.ClubName(a.Club)
	if a.Title == "" {
		return models.Announcement{}, ErrEmptyTitle
	}
	if a.Club == "" {
		return models.Announcement{}, ErrEmptyClub
	}

	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Announcement, error) {
	var a models.Announcement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// ListForClubs returns announcements from the named clubs, newest first.
// Callers build the club set from the viewer's subscriptions plus the
// broadcast clubs, so the query itself enforces visibility.
func (s *Store) ListForClubs(ctx context.Context, clubNames []string, limit int64) ([]models.Announcement, error) {
	if len(clubNames) == 0 {
		return []models.Announcement{}, nil
	}
	filter := bson.M{"club": bson.M{"$in": clubNames}}
	return s.list(ctx, filter, limit)
}

// ListAll returns announcements across every club, newest first. Admin view.
func (s *Store) ListAll(ctx context.Context, limit int64) ([]models.Announcement, error) {
	return s.list(ctx, bson.M{}, limit)
}

// ListByClub returns one club's announcement history, newest first.
func (s *Store) ListByClub(ctx context.Context, clubName string, limit int64) ([]models.Announcement, error) {
	return s.list(ctx, bson.M{"club": normalize.ClubName(clubName)}, limit)
}

func (s *Store) list(ctx context.Context, filter bson.M, limit int64) ([]models.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var anns []models.Announcement
	if err := cur.All(ctx, &anns); err != nil {
		return nil, err
	}
	if anns == nil {
		anns = []models.Announcement{}
	}
	return anns, nil
}

// DeleteByClub removes all of a club's announcements. Used when a club is
// deleted. Returns the number of documents deleted.
func (s *Store) DeleteByClub(ctx context.Context, clubName string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"club": clubName})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
