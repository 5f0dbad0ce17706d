// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents students, club reps, and admins.
//
// NOTE:
//   - SubscribedClubs holds club *names*, not IDs, because announcement
//     visibility matches on the club name string. Set semantics are
//     enforced at the store ($addToSet / $pull), never by rewriting the
//     whole document.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"` // student | rep | admin
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	// Academic profile
	Year       int    `bson:"year,omitempty" json:"year,omitempty"` // 1..4
	RollNumber string `bson:"roll_number,omitempty" json:"roll_number,omitempty"`
	Branch     string `bson:"branch,omitempty" json:"branch,omitempty"`

	// Authentication
	AuthMethod   string `bson:"auth_method,omitempty" json:"-"` // password | google
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	SubscribedClubs []string `bson:"subscribed_clubs,omitempty" json:"subscribed_clubs,omitempty"`

	VerificationStatus string `bson:"verification_status,omitempty" json:"verification_status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
