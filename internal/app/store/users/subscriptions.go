package userstore

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

// ErrEmptyClubName is returned when a subscription call names no club.
var ErrEmptyClubName = errors.New("club name is required")

// Subscribe adds a club to the user's subscription set. $addToSet keeps the
// operation idempotent: subscribing twice leaves a single entry.
func (s *Store) Subscribe(ctx context.Context, userID primitive.ObjectID, clubName string) error {
	if normalize.ClubName(clubName) == "" {
		return ErrEmptyClubName
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"subscribed_clubs": normalize.ClubName(clubName)},
			"$set":      bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Unsubscribe removes a club from the user's subscription set. Removing a
// club the user never subscribed to is a no-op, not an error.
func (s *Store) Unsubscribe(ctx context.Context, userID primitive.ObjectID, clubName string) error {
	if normalize.ClubName(clubName) == "" {
		return ErrEmptyClubName
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"subscribed_clubs": normalize.ClubName(clubName)},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Subscriptions returns the user's subscribed club names. A user with no
// subscriptions gets an empty slice, never nil.
func (s *Store) Subscriptions(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	var u models.User
	proj := options.FindOne().SetProjection(bson.M{"subscribed_clubs": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		return nil, err
	}
	if u.SubscribedClubs == nil {
		return []string{}, nil
	}
	return u.SubscribedClubs, nil
}

// Subscriber identifies one recipient of a club announcement.
type Subscriber struct {
	ID primitive.ObjectID `bson:"_id"`
}

// FindSubscribedTo returns the IDs of all active users subscribed to the
// named club. The multikey index on subscribed_clubs serves this query.
func (s *Store) FindSubscribedTo(ctx context.Context, clubName string) ([]Subscriber, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{
		"subscribed_clubs": normalize.ClubName(clubName),
		"status":           bson.M{"$ne": "disabled"},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []Subscriber
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// RemoveClubFromAll pulls a club name out of every user's subscription set.
// Called when a club is deleted so stale names do not linger in registries.
func (s *Store) RemoveClubFromAll(ctx context.Context, clubName string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"subscribed_clubs": clubName},
		bson.M{
			"$pull": bson.M{"subscribed_clubs": clubName},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
