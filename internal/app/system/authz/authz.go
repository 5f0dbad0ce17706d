// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/campushub/campushub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. "rep" is a club representative; reps and admins may create
// clubs, announcements, events, and placements.
const (
	RoleStudent = "student"
	RoleRep     = "rep"
	RoleAdmin   = "admin"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID,
// and a found flag. If no user is present in context or the user ID is
// malformed, it returns "visitor", "", NilObjectID, false. ok=true
// always means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// IsRep reports whether the current request's user is a club rep.
func IsRep(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleRep
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleStudent
}

// IsPrivileged reports whether the current user may create clubs,
// announcements, events, and placements (admin or rep).
func IsPrivileged(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleAdmin || role == RoleRep)
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleRep, RoleAdmin:
		return true
	}
	return false
}
