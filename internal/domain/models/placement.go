// internal/domain/models/placement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Placement is a job or internship posting from the placement cell.
// MinYear gates who may open the posting details (3rd/4th year only in
// the default campus policy).
type Placement struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Company     string             `bson:"company" json:"company"`
	Role        string             `bson:"role" json:"role"`
	Eligibility string             `bson:"eligibility" json:"eligibility"` // display string, e.g. "3rd & 4th Year"
	MinYear     int                `bson:"min_year" json:"min_year"`
	Deadline    time.Time          `bson:"deadline" json:"deadline"`
	Link        string             `bson:"link" json:"link"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
