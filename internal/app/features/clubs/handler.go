// internal/app/features/clubs/handler.go
package clubs

import (
	"context"
	"errors"
	"net/http"

	announcementstore "github.com/campushub/campushub/internal/app/store/announcements"
	clubstore "github.com/campushub/campushub/internal/app/store/clubs"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/auditlog"
	"github.com/campushub/campushub/internal/app/system/authz"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the club endpoints, including the subscription
// registry (subscribe/unsubscribe).
type Handler struct {
	Clubs         *clubstore.Store
	Users         *userstore.Store
	Announcements *announcementstore.Store
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
}

// NewHandler constructs the clubs Handler.
func NewHandler(clubs *clubstore.Store, users *userstore.Store, anns *announcementstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Clubs:         clubs,
		Users:         users,
		Announcements: anns,
		AuditLog:      audit,
		Log:           logger,
	}
}

// List handles GET /clubs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	clubs, err := h.Clubs.List(ctx)
	if err != nil {
		h.Log.Error("club list failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, clubs)
}

type createClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Create handles POST /clubs. Admins and club reps only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok || !(role == authz.RoleAdmin || role == authz.RoleRep) {
		httpjson.Forbidden(w, "")
		return
	}

	var req createClubRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	club, err := h.Clubs.Create(ctx, models.Club{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, clubstore.ErrEmptyClubName):
			httpjson.BadRequest(w, err.Error())
		case errors.Is(err, clubstore.ErrDuplicateClubName):
			httpjson.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("club create failed", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.ClubCreated(ctx, r, userID, club.ID, role, club.Name)
	httpjson.Created(w, club)
}

type updateClubRequest struct {
	Description string `json:"description"`
}

// Update handles PUT /clubs/{id}. Only the description may change; the
// club name is the join key into subscriptions and announcements.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok || !(role == authz.RoleAdmin || role == authz.RoleRep) {
		httpjson.Forbidden(w, "")
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateClubRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Clubs.UpdateDescription(ctx, id, req.Description); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "club not found")
			return
		}
		h.Log.Error("club update failed", zap.Error(err), zap.String("club_id", id.Hex()))
		httpjson.ServerError(w)
		return
	}

	h.AuditLog.ClubUpdated(ctx, r, userID, id, role)
	httpjson.OK(w, map[string]string{"status": "updated"})
}

// Delete handles DELETE /clubs/{id}. Admin only. The club name is also
// pulled from every user's subscription set and the club's
// announcements are removed, so no dangling references survive.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok || role != authz.RoleAdmin {
		httpjson.Forbidden(w, "")
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "club not found")
			return
		}
		h.Log.Error("club lookup failed", zap.Error(err), zap.String("club_id", id.Hex()))
		httpjson.ServerError(w)
		return
	}

	if _, err := h.Clubs.Delete(ctx, id); err != nil {
		h.Log.Error("club delete failed", zap.Error(err), zap.String("club_id", id.Hex()))
		httpjson.ServerError(w)
		return
	}

	unsubscribed, err := h.Users.RemoveClubFromAll(ctx, club.Name)
	if err != nil {
		h.Log.Error("club delete: subscription cleanup failed",
			zap.Error(err), zap.String("club", club.Name))
	}
	removedAnns, err := h.Announcements.DeleteByClub(ctx, club.Name)
	if err != nil {
		h.Log.Error("club delete: announcement cleanup failed",
			zap.Error(err), zap.String("club", club.Name))
	}

	h.AuditLog.ClubDeleted(ctx, r, userID, id, role, club.Name)
	h.Log.Info("club deleted",
		zap.String("club", club.Name),
		zap.Int64("subscriptions_cleared", unsubscribed),
		zap.Int64("announcements_removed", removedAnns))

	httpjson.OK(w, map[string]any{
		"status":                "deleted",
		"subscriptions_cleared": unsubscribed,
		"announcements_removed": removedAnns,
	})
}

// Subscribe handles POST /clubs/{id}/subscribe. Idempotent: repeating
// the call leaves a single entry in the user's subscription set.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.setSubscription(w, r, true)
}

// Unsubscribe handles POST /clubs/{id}/unsubscribe. Idempotent.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.setSubscription(w, r, false)
}

func (h *Handler) setSubscription(w http.ResponseWriter, r *http.Request, subscribe bool) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "club not found")
			return
		}
		h.Log.Error("club lookup failed", zap.Error(err), zap.String("club_id", id.Hex()))
		httpjson.ServerError(w)
		return
	}

	if subscribe {
		err = h.Users.Subscribe(ctx, userID, club.Name)
	} else {
		err = h.Users.Unsubscribe(ctx, userID, club.Name)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("subscription update failed",
			zap.Error(err),
			zap.String("club", club.Name),
			zap.Bool("subscribe", subscribe))
		httpjson.ServerError(w)
		return
	}

	status := "unsubscribed"
	if subscribe {
		status = "subscribed"
	}
	httpjson.OK(w, map[string]string{"status": status, "club": club.Name})
}

func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
