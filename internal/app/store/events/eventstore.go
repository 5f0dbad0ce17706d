// internal/app/store/events/eventstore.go
package eventstore

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
	ErrEmptyTitle   = errors.New("event title is required")
	ErrNoStartTime  = errors.New("event start time is required")
	ErrUnknownEvent = errors.New("event not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts a new event. Every event starts out scheduled regardless
// of what the caller set; promotion to ongoing happens only by the sweep.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.Title = normalize.Name(e.Title)
	if e.Title == "" {
		return models.Event{}, ErrEmptyTitle
	}
	if e.StartTime.IsZero() {
		return models.Event{}, ErrNoStartTime
	}

	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.Status = models.EventScheduled
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// List returns all events ordered by start time. Optionally filtered by status.
func (s *Store) List(ctx context.Context, statusFilter string) ([]models.Event, error) {
	filter := bson.M{}
	if statusFilter != "" {
		filter["status"] = statusFilter
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// EventUpdate holds the editable fields of an event. Nil pointers leave the
// stored value untouched.
type EventUpdate struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	Location    *string
	RegLink     *string
}

// Update applies a field-level update. Changing the start time of a
// scheduled event moves its promotion point; the status itself is not
// editable here.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd EventUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		set["title"] = title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.StartTime != nil {
		if upd.StartTime.IsZero() {
			return ErrNoStartTime
		}
		set["start_time"] = *upd.StartTime
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.RegLink != nil {
		set["reg_link"] = *upd.RegLink
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PromoteDue flips every scheduled event whose start time has arrived to
// ongoing. A single UpdateMany keeps the sweep idempotent: events already
// ongoing no longer match the filter, so overlapping or repeated sweeps
// never double-promote. Returns the number of events promoted.
func (s *Store) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     models.EventScheduled,
			"start_time": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{
			"status":     models.EventOngoing,
			"updated_at": now,
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes an event by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
