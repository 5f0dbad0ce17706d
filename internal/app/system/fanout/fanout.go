// Package fanout turns one announcement into per-subscriber notifications.
// It sits between the announcement watcher (or the create handler, when no
// watcher runs) and the notification store, and only talks to either
// through small interfaces so the delivery logic tests without a database.
package fanout

import (
	"context"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fallbackBody is used when an announcement has no title to show.
const fallbackBody = "New update available"

// SubscriberSource yields the recipients for a club's announcement.
type SubscriberSource interface {
	FindSubscribedTo(ctx context.Context, clubName string) ([]userstore.Subscriber, error)
}

// BatchWriter persists a batch of notifications. The write must be
// idempotent with respect to (user, announcement) pairs so redelivered
// announcements do not duplicate inbox entries.
type BatchWriter interface {
	InsertBatch(ctx context.Context, batch []models.Notification) (int64, error)
}

// Publisher pushes a delivery signal to an external channel after the
// batch is committed. Best-effort: failures are logged, never returned.
type Publisher interface {
	PublishDelivery(ctx context.Context, announcementID string, recipients int64) error
}

type Service struct {
	subs      SubscriberSource
	writer    BatchWriter
	publisher Publisher
	log       *zap.Logger
}

func New(subs SubscriberSource, writer BatchWriter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{subs: subs, writer: writer, log: log}
}

// SetPublisher installs an optional post-commit publisher.
func (s *Service) SetPublisher(p Publisher) { s.publisher = p }

// Deliver builds and writes one notification per subscriber of the
// announcement's club. Returns the number of notifications inserted.
// An announcement for a club with no subscribers delivers to nobody and
// writes nothing.
func (s *Service) Deliver(ctx context.Context, ann models.Announcement) (int64, error) {
	subscribers, err := s.subs.FindSubscribedTo(ctx, ann.Club)
	if err != nil {
		return 0, err
	}
	if len(subscribers) == 0 {
		s.log.Debug("announcement has no subscribers",
			zap.String("announcement_id", ann.ID.Hex()),
			zap.String("club", ann.Club))
		return 0, nil
	}

	batch := make([]models.Notification, 0, len(subscribers))
	for _, sub := range subscribers {
		batch = append(batch, Record(ann, sub.ID))
	}

	inserted, err := s.writer.InsertBatch(ctx, batch)
	if err != nil {
		return inserted, err
	}

	s.log.Info("announcement delivered",
		zap.String("announcement_id", ann.ID.Hex()),
		zap.String("club", ann.Club),
		zap.Int("subscribers", len(subscribers)),
		zap.Int64("inserted", inserted))

	if s.publisher != nil && inserted > 0 {
		if err := s.publisher.PublishDelivery(ctx, ann.ID.Hex(), inserted); err != nil {
			s.log.Warn("delivery publish failed",
				zap.String("announcement_id", ann.ID.Hex()),
				zap.Error(err))
		}
	}
	return inserted, nil
}

// Record builds the notification shown to one recipient. The title names
// the posting club, the body carries the announcement's title when it has
// one, and the link points at the announcement detail.
func Record(ann models.Announcement, userID primitive.ObjectID) models.Notification {
	body := ann.Title
	if body == "" {
		body = fallbackBody
	}
	return models.Notification{
		UserID:         userID,
		AnnouncementID: ann.ID,
		Title:          "New Announcement from " + ann.Club,
		Body:           body,
		Link:           "/announcements/" + ann.ID.Hex(),
		Read:           false,
	}
}
