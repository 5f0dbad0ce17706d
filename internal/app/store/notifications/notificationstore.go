// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/campushub/campushub/internal/app/system/txn"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	client *mongo.Client
	c      *mongo.Collection
}

// ErrNotOwner is returned when a user tries to modify a notification that
// belongs to someone else.
var ErrNotOwner = errors.New("notification does not belong to this user")

func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), c: db.Collection("notifications")}
}

// InsertBatch writes a batch of notifications, preferring a multi-document
// transaction so a fan-out lands fully or not at all. On deployments
// without transaction support it falls back to an unordered bulk write.
// Duplicate-key failures are swallowed in both paths: the unique
// (user_id, announcement_id) index turns a redelivered batch into a no-op
// instead of a duplicate inbox entry. Returns the number inserted.
func (s *Store) InsertBatch(ctx context.Context, batch []models.Notification) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(batch))
	for i := range batch {
		n := batch[i]
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(n))
	}

	var inserted int64
	err := txn.WithTransaction(ctx, s.client, func(sc context.Context) error {
		n, err := s.bulkInsert(sc, writes)
		inserted = n
		return err
	})
	if err != nil {
		// Only two transaction failures may retry outside a session:
		// standalone servers reject transactions outright, and a duplicate
		// key aborts the whole transaction even though the unique index
		// makes redelivery harmless. Anything else surfaces as-is, since a
		// non-transactional retry could persist part of the batch.
		if !canRetryOutsideTxn(err) {
			return 0, err
		}
		if txn.IsNotSupported(err) {
			zap.L().Debug("transactions unavailable, using bulk write",
				zap.Int("batch", len(batch)))
		} else {
			zap.L().Debug("duplicate key aborted transaction, retrying as bulk write",
				zap.Int("batch", len(batch)))
		}
		inserted, err = s.bulkInsert(ctx, writes)
	}
	return inserted, err
}

// canRetryOutsideTxn reports whether a failed transaction may be retried
// as a plain bulk write without risking a partial batch becoming visible.
func canRetryOutsideTxn(err error) bool {
	return txn.IsNotSupported(err) || mongo.IsDuplicateKeyError(err)
}

func (s *Store) bulkInsert(ctx context.Context, writes []mongo.WriteModel) (int64, error) {
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		if onlyDuplicateKeys(err) {
			if res != nil {
				return res.InsertedCount, nil
			}
			return 0, nil
		}
		if res != nil {
			return res.InsertedCount, err
		}
		return 0, err
	}
	return res.InsertedCount, nil
}

// onlyDuplicateKeys reports whether every write error in a bulk failure is
// an E11000 duplicate key. Anything else is a real failure.
func onlyDuplicateKeys(err error) bool {
	var be mongo.BulkWriteException
	if !errors.As(err, &be) {
		return false
	}
	if be.WriteConcernError != nil {
		return false
	}
	if len(be.WriteErrors) == 0 {
		return false
	}
	for _, we := range be.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}

// ListForUser returns the user's notifications, newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var notifs []models.Notification
	if err := cur.All(ctx, &notifs); err != nil {
		return nil, err
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	return notifs, nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkRead flags one notification as read. The filter includes the owner
// so a user can never flip someone else's notification; a mismatch is
// reported as ErrNotOwner when the notification exists at all.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing from not-owned for the caller's status code.
		err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
		if err == mongo.ErrNoDocuments {
			return mongo.ErrNoDocuments
		}
		if err != nil {
			return err
		}
		return ErrNotOwner
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read.
// Returns the number updated.
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
