// internal/app/features/announcements/handler.go
package announcements

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	announcementstore "github.com/campushub/campushub/internal/app/store/announcements"
	clubstore "github.com/campushub/campushub/internal/app/store/clubs"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/auditlog"
	"github.com/campushub/campushub/internal/app/system/authz"
	"github.com/campushub/campushub/internal/app/system/fanout"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/app/system/visibility"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultFeedLimit = 50

// Handler serves the announcement feed and creation endpoint.
type Handler struct {
	Announcements *announcementstore.Store
	Clubs         *clubstore.Store
	Users         *userstore.Store
	Visibility    *visibility.Filter
	AuditLog      *auditlog.Logger
	Log           *zap.Logger

	// Fanout is called after a create when the change-stream watcher is
	// not running (standalone Mongo). With the watcher active it stays
	// nil and delivery happens off the announcements change stream.
	Fanout *fanout.Service

	sanitizer *bluemonday.Policy
}

// NewHandler constructs the announcements Handler.
func NewHandler(anns *announcementstore.Store, clubs *clubstore.Store, users *userstore.Store, vis *visibility.Filter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Announcements: anns,
		Clubs:         clubs,
		Users:         users,
		Visibility:    vis,
		AuditLog:      audit,
		Log:           logger,
		sanitizer:     bluemonday.UGCPolicy(),
	}
}

// SetInlineFanout installs the fan-out service for deployments without
// change streams.
func (h *Handler) SetInlineFanout(f *fanout.Service) { h.Fanout = f }

// List handles GET /announcements. The feed only contains announcements
// from clubs the user subscribes to plus the broadcast sources; the
// filtering happens in the store query. Admins see everything.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	limit := int64(defaultFeedLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if role == authz.RoleAdmin {
		anns, err := h.Announcements.ListAll(ctx, limit)
		if err != nil {
			h.Log.Error("announcement list failed", zap.Error(err))
			httpjson.ServerError(w)
			return
		}
		httpjson.OK(w, anns)
		return
	}

	subs, err := h.Users.Subscriptions(ctx, userID)
	if err != nil {
		h.Log.Error("subscription lookup failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.ServerError(w)
		return
	}

	anns, err := h.Announcements.ListForClubs(ctx, h.Visibility.VisibleClubs(subs), limit)
	if err != nil {
		h.Log.Error("announcement list failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, anns)
}

// Get handles GET /announcements/{id}. An announcement outside the
// user's visible set reads as 404, the same as one that does not exist.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ann, err := h.Announcements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "announcement not found")
			return
		}
		h.Log.Error("announcement lookup failed", zap.Error(err), zap.String("id", id.Hex()))
		httpjson.ServerError(w)
		return
	}

	if role != authz.RoleAdmin {
		subs, err := h.Users.Subscriptions(ctx, userID)
		if err != nil {
			h.Log.Error("subscription lookup failed", zap.Error(err), zap.String("user_id", userID.Hex()))
			httpjson.ServerError(w)
			return
		}
		if !h.Visibility.Visible(subs, ann.Club) {
			httpjson.NotFound(w, "announcement not found")
			return
		}
	}

	httpjson.OK(w, ann)
}

type createRequest struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Club  string `json:"club"`
}

// Create handles POST /announcements. Admins and club reps only. The
// body is sanitized before it is stored; announcements are immutable
// afterwards.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok || !(role == authz.RoleAdmin || role == authz.RoleRep) {
		httpjson.Forbidden(w, "")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Broadcast sources like "Admin" are pseudo-clubs without a club
	// document; anything else must name an existing club.
	if !h.Visibility.IsBroadcast(req.Club) {
		exists, err := h.Clubs.Exists(ctx, req.Club)
		if err != nil {
			h.Log.Error("club existence check failed", zap.Error(err), zap.String("club", req.Club))
			httpjson.ServerError(w)
			return
		}
		if !exists {
			httpjson.BadRequest(w, "unknown club")
			return
		}
	}

	ann, err := h.Announcements.Create(ctx, models.Announcement{
		Title:     req.Title,
		Body:      h.sanitizer.Sanitize(req.Body),
		Club:      req.Club,
		CreatedBy: userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, announcementstore.ErrEmptyTitle),
			errors.Is(err, announcementstore.ErrEmptyClub):
			httpjson.BadRequest(w, err.Error())
		default:
			h.Log.Error("announcement create failed", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.AnnouncementCreated(ctx, r, userID, ann.ID, role, ann.Club)

	if h.Fanout != nil {
		// No change-stream watcher: deliver notifications from the
		// request path. The unique index keeps a watcher replay or a
		// retried request from duplicating them.
		go func() {
			fctx, fcancel := context.WithTimeout(context.Background(), timeouts.Batch())
			defer fcancel()
			if _, err := h.Fanout.Deliver(fctx, ann); err != nil {
				h.Log.Error("inline fan-out failed",
					zap.Error(err),
					zap.String("announcement_id", ann.ID.Hex()))
			}
		}()
	}

	httpjson.Created(w, ann)
}
