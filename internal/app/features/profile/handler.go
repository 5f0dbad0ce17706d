// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/authz"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own profile.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs the profile Handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// Get handles GET /profile.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("profile lookup failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, u)
}

type updateRequest struct {
	FullName   *string `json:"full_name,omitempty"`
	Year       *int    `json:"year,omitempty"`
	RollNumber *string `json:"roll_number,omitempty"`
	Branch     *string `json:"branch,omitempty"`
}

// Update handles PUT /profile. Field-level: absent fields keep their
// stored values, and the subscription set is never touched from here.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, userID, userstore.ProfileUpdate{
		FullName:   req.FullName,
		Year:       req.Year,
		RollNumber: req.RollNumber,
		Branch:     req.Branch,
	})
	switch {
	case err == nil:
	case errors.Is(err, userstore.ErrBadYear):
		httpjson.BadRequest(w, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		httpjson.NotFound(w, "user not found")
		return
	default:
		h.Log.Error("profile update failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.ServerError(w)
		return
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.Log.Error("profile reload failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.OK(w, map[string]string{"status": "updated"})
		return
	}
	httpjson.OK(w, u)
}
