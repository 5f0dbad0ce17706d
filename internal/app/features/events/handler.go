// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"net/http"
	"time"

	eventstore "github.com/campushub/campushub/internal/app/store/events"
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

// Handler serves the campus event endpoints.
type Handler struct {
	Events   *eventstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs the events Handler.
func NewHandler(events *eventstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Events: events, AuditLog: audit, Log: logger}
}

// List handles GET /events. Ordered by start time; ?status=scheduled or
// ?status=ongoing narrows the list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && statusFilter != models.EventScheduled && statusFilter != models.EventOngoing {
		httpjson.BadRequest(w, "unknown status filter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.List(ctx, statusFilter)
	if err != nil {
		h.Log.Error("event list failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, events)
}

// Get handles GET /events/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "event not found")
			return
		}
		h.Log.Error("event lookup failed", zap.Error(err), zap.String("id", id.Hex()))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, ev)
}

type createRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	Location    string    `json:"location,omitempty"`
	RegLink     string    `json:"reg_link,omitempty"`
}

// Create handles POST /events. Admins and club reps only. New events
// always start out scheduled; only the promotion sweep moves them to
// ongoing.
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

	ev, err := h.Events.Create(ctx, models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		Location:    req.Location,
		RegLink:     req.RegLink,
		CreatedBy:   userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, eventstore.ErrEmptyTitle),
			errors.Is(err, eventstore.ErrNoStartTime):
			httpjson.BadRequest(w, err.Error())
		default:
			h.Log.Error("event create failed", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.EventCreated(ctx, r, userID, ev.ID, role, ev.Title)
	httpjson.Created(w, ev)
}

type updateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	Location    *string    `json:"location,omitempty"`
	RegLink     *string    `json:"reg_link,omitempty"`
}

// Update handles PUT /events/{id}. Field-level: absent fields stay as
// they are. The status is never editable through the API.
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

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Events.Update(ctx, id, eventstore.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		Location:    req.Location,
		RegLink:     req.RegLink,
	})
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.NotFound(w, "event not found")
		case errors.Is(err, eventstore.ErrEmptyTitle),
			errors.Is(err, eventstore.ErrNoStartTime):
			httpjson.BadRequest(w, err.Error())
		default:
			h.Log.Error("event update failed", zap.Error(err), zap.String("id", id.Hex()))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.EventUpdated(ctx, r, userID, id, role)
	httpjson.OK(w, map[string]string{"status": "updated"})
}

// Delete handles DELETE /events/{id}. Admin only.
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Events.Delete(ctx, id)
	if err != nil {
		h.Log.Error("event delete failed", zap.Error(err), zap.String("id", id.Hex()))
		httpjson.ServerError(w)
		return
	}
	if n == 0 {
		httpjson.NotFound(w, "event not found")
		return
	}

	h.AuditLog.EventDeleted(ctx, r, userID, id, role)
	httpjson.OK(w, map[string]string{"status": "deleted"})
}

func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
