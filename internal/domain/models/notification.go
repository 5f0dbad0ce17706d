// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a per-user record materialized by the announcement
// fan-out. Owned exclusively by UserID; only the owner may mark it read.
//
// The (user_id, announcement_id) pair is unique, which makes fan-out
// redelivery safe: a second delivery of the same announcement create
// event writes zero new records.
type Notification struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"-"`
	AnnouncementID primitive.ObjectID `bson:"announcement_id" json:"announcement_id"`
	Title          string             `bson:"title" json:"title"`
	Body           string             `bson:"body" json:"body"`
	Link           string             `bson:"link" json:"link"`
	Read           bool               `bson:"read" json:"read"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
