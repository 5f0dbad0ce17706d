// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/campushub/campushub/internal/app/store/oauthstate"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	sysauth "github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/auditlog"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/status"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Handler serves signup, login, logout, and the current-user endpoint.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *sysauth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// Google OAuth
	StateStore   *oauthstate.Store
	ClientID     string
	ClientSecret string
	RedirectURL  string // baseURL + "/auth/google/callback"
}

// NewHandler constructs the auth Handler.
func NewHandler(users *userstore.Store, sessionMgr *sysauth.SessionManager, audit *auditlog.Logger, stateStore *oauthstate.Store, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		SessionMgr:   sessionMgr,
		AuditLog:     audit,
		Log:          logger,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
	}
}

type signupRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Year       int    `json:"year,omitempty"`
	RollNumber string `json:"roll_number,omitempty"`
	Branch     string `json:"branch,omitempty"`
}

type authResponse struct {
	User  userInfo `json:"user"`
	Token string   `json:"token,omitempty"`
}

type userInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeSignup handles POST /auth/signup. New accounts always start as
// students; admins promote reps afterwards.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		httpjson.BadRequest(w, "full_name is required")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httpjson.BadRequest(w, "email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.BadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Year:         req.Year,
		RollNumber:   req.RollNumber,
		Branch:       req.Branch,
		AuthMethod:   "password",
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		h.Log.Error("signup: user create failed", zap.Error(err))
		httpjson.BadRequest(w, err.Error())
		return
	}

	h.AuditLog.SignupSuccess(ctx, r, u.ID, u.Email, "password")
	h.signIn(w, r, &u, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeLogin handles POST /auth/login.
//
// Failures all return the same 401 body so the response never reveals
// whether an email is registered.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Email)
			httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login: user lookup failed", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	if u.Status == status.Disabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.Email)
		httpjson.Forbidden(w, "account disabled")
		return
	}

	if u.PasswordHash == "" {
		// Google-auth account; it has no password to check.
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, "password", u.Email)
	h.signIn(w, r, u, http.StatusOK)
}

// ServeLogout handles POST /auth/logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	u, _ := sysauth.CurrentUser(r)

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: session clear failed", zap.Error(err))
	}
	if u != nil {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}
	httpjson.OK(w, map[string]string{"status": "signed out"})
}

// ServeMe handles GET /auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	httpjson.OK(w, userInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

// signIn writes the session cookie, issues a bearer token when the
// issuer is configured, and responds with the user payload.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u *models.User, statusCode int) {
	su := &sysauth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("session save failed", zap.Error(err), zap.String("user_id", su.ID))
		httpjson.ServerError(w)
		return
	}

	resp := authResponse{
		User: userInfo{ID: su.ID, Name: su.Name, Email: su.Email, Role: su.Role},
	}
	if issuer := h.SessionMgr.Tokens(); issuer != nil {
		token, err := issuer.Issue(su)
		if err != nil {
			h.Log.Error("token issue failed", zap.Error(err), zap.String("user_id", su.ID))
		} else {
			resp.Token = token
		}
	}

	httpjson.Write(w, statusCode, resp)
}
