// internal/app/features/placements/handler.go
package placements

import (
	"context"
	"errors"
	"net/http"
	"time"

	placementstore "github.com/campushub/campushub/internal/app/store/placements"
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

// Handler serves the placement drive endpoints.
type Handler struct {
	Placements *placementstore.Store
	Users      *userstore.Store
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs the placements Handler.
func NewHandler(placements *placementstore.Store, users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Placements: placements, Users: users, AuditLog: audit, Log: logger}
}

// listItem is the placement summary everyone sees. The application link
// only appears on the detail view, which is year-gated.
type listItem struct {
	ID          primitive.ObjectID `json:"id"`
	Company     string             `json:"company"`
	Role        string             `json:"role"`
	Eligibility string             `json:"eligibility"`
	MinYear     int                `json:"min_year"`
	Deadline    time.Time          `json:"deadline"`
}

// List handles GET /placements. Nearest deadline first; pass ?all=1 to
// include drives past their deadline.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("all") == ""

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	drives, err := h.Placements.List(ctx, openOnly, time.Now().UTC())
	if err != nil {
		h.Log.Error("placement list failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	items := make([]listItem, 0, len(drives))
	for _, d := range drives {
		items = append(items, listItem{
			ID:          d.ID,
			Company:     d.Company,
			Role:        d.Role,
			Eligibility: d.Eligibility,
			MinYear:     d.MinYear,
			Deadline:    d.Deadline,
		})
	}
	httpjson.OK(w, items)
}

// Get handles GET /placements/{id}. Students below the drive's minimum
// year cannot open the details or the application link; admins and reps
// always can.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	drive, err := h.Placements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "placement not found")
			return
		}
		h.Log.Error("placement lookup failed", zap.Error(err), zap.String("id", id.Hex()))
		httpjson.ServerError(w)
		return
	}

	if role == authz.RoleStudent && drive.MinYear > 0 {
		u, err := h.Users.GetByID(ctx, userID)
		if err != nil {
			h.Log.Error("placement gate: user lookup failed", zap.Error(err), zap.String("user_id", userID.Hex()))
			httpjson.ServerError(w)
			return
		}
		if u.Year < drive.MinYear {
			httpjson.Forbidden(w, "this drive is open to later-year students only")
			return
		}
	}

	httpjson.OK(w, drive)
}

type createRequest struct {
	Company     string    `json:"company"`
	Role        string    `json:"role,omitempty"`
	Eligibility string    `json:"eligibility,omitempty"`
	MinYear     int       `json:"min_year,omitempty"`
	Deadline    time.Time `json:"deadline"`
	Link        string    `json:"link,omitempty"`
}

// Create handles POST /placements. Admins and club reps only.
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

	drive, err := h.Placements.Create(ctx, models.Placement{
		Company:     req.Company,
		Role:        req.Role,
		Eligibility: req.Eligibility,
		MinYear:     req.MinYear,
		Deadline:    req.Deadline.UTC(),
		Link:        req.Link,
		CreatedBy:   userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, placementstore.ErrEmptyCompany),
			errors.Is(err, placementstore.ErrBadMinYear):
			httpjson.BadRequest(w, err.Error())
		default:
			h.Log.Error("placement create failed", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.PlacementCreated(ctx, r, userID, drive.ID, role, drive.Company)
	httpjson.Created(w, drive)
}

// Delete handles DELETE /placements/{id}. Admin only.
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

	n, err := h.Placements.Delete(ctx, id)
	if err != nil {
		h.Log.Error("placement delete failed", zap.Error(err), zap.String("id", id.Hex()))
		httpjson.ServerError(w)
		return
	}
	if n == 0 {
		httpjson.NotFound(w, "placement not found")
		return
	}

	h.AuditLog.PlacementDeleted(ctx, r, userID, id, role)
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
