// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event statuses. Transitions are forward-only: scheduled -> ongoing,
// performed by the promotion worker once StartTime has passed.
const (
	EventScheduled = "scheduled"
	EventOngoing   = "ongoing"
)

// Event is a campus event created by a privileged role.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	StartTime   time.Time          `bson:"start_time" json:"start_time"`
	Location    string             `bson:"location" json:"location"`
	RegLink     string             `bson:"reg_link,omitempty" json:"reg_link,omitempty"`
	Status      string             `bson:"status" json:"status"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
