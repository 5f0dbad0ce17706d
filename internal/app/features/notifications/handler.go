// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	notificationstore "github.com/campushub/campushub/internal/app/store/notifications"
	"github.com/campushub/campushub/internal/app/system/authz"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultInboxLimit = 50

// Handler serves the per-user notification inbox.
type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

// NewHandler constructs the notifications Handler.
func NewHandler(notifs *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Notifications: notifs, Log: logger}
}

// List handles GET /notifications. Newest first, own inbox only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	limit := int64(defaultInboxLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	notifs, err := h.Notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		h.Log.Error("notification list failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, notifs)
}

// UnreadCount handles GET /notifications/unread_count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		h.Log.Error("unread count failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]int64{"unread": n})
}

// MarkRead handles POST /notifications/{id}/read. Another user's
// notification is a 403, a missing one a 404.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
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

	if err := h.Notifications.MarkRead(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.NotFound(w, "notification not found")
		case errors.Is(err, notificationstore.ErrNotOwner):
			httpjson.Forbidden(w, "")
		default:
			h.Log.Error("mark read failed", zap.Error(err), zap.String("id", id.Hex()))
			httpjson.ServerError(w)
		}
		return
	}
	httpjson.OK(w, map[string]string{"status": "read"})
}

// MarkAllRead handles POST /notifications/read_all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		h.Log.Error("mark all read failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]int64{"marked": n})
}
