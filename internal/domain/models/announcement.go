// internal/domain/models/announcement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement is a campus-wide or club post. Immutable after creation;
// there is no update or delete path. Creating one triggers the
// notification fan-out exactly once (redelivery is deduplicated at the
// notifications collection).
type Announcement struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"` // sanitized HTML
	Club      string             `bson:"club" json:"club"` // originating club name
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
