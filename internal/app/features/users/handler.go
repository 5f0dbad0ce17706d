// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/auditlog"
	"github.com/campushub/campushub/internal/app/system/authz"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultListLimit = 100

// Handler serves the admin user-management endpoints.
type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs the users Handler.
func NewHandler(users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, AuditLog: audit, Log: logger}
}

// List handles GET /users. Admins only. Supports ?role= and ?limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !authz.IsAdmin(r) {
		httpjson.Forbidden(w, "")
		return
	}

	role := r.URL.Query().Get("role")
	if role != "" && !authz.ValidRole(role) {
		httpjson.BadRequest(w, "unknown role filter")
		return
	}

	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 500 {
			httpjson.BadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx, role, limit)
	if err != nil {
		h.Log.Error("user list failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, list)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole handles PUT /users/{id}/role. Admins only.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	role, _, actorID, ok := authz.UserCtx(r)
	if !ok || role != authz.RoleAdmin {
		httpjson.Forbidden(w, "")
		return
	}

	targetID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req setRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err), zap.String("user_id", targetID.Hex()))
		httpjson.ServerError(w)
		return
	}

	if err := h.Users.SetRole(ctx, targetID, req.Role); err != nil {
		switch {
		case errors.Is(err, userstore.ErrBadRole):
			httpjson.BadRequest(w, err.Error())
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.NotFound(w, "user not found")
		default:
			h.Log.Error("role change failed", zap.Error(err), zap.String("user_id", targetID.Hex()))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.UserRoleChanged(ctx, r, actorID, targetID, target.Role, req.Role)

	httpjson.OK(w, map[string]string{"id": targetID.Hex(), "role": req.Role})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /users/{id}/status. Admins only. A disabled
// account keeps its data but can no longer sign in.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	role, _, actorID, ok := authz.UserCtx(r)
	if !ok || role != authz.RoleAdmin {
		httpjson.Forbidden(w, "")
		return
	}

	targetID, ok := parseID(w, r)
	if !ok {
		return
	}

	if actorID == targetID {
		httpjson.BadRequest(w, "cannot change your own account status")
		return
	}

	var req setStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetStatus(ctx, targetID, req.Status); err != nil {
		switch {
		case errors.Is(err, userstore.ErrBadStatus):
			httpjson.BadRequest(w, err.Error())
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.NotFound(w, "user not found")
		default:
			h.Log.Error("status change failed", zap.Error(err), zap.String("user_id", targetID.Hex()))
			httpjson.ServerError(w)
		}
		return
	}

	h.AuditLog.UserStatusChanged(ctx, r, actorID, targetID, req.Status)

	httpjson.OK(w, map[string]string{"id": targetID.Hex(), "status": req.Status})
}

func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
