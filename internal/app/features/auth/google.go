// internal/app/features/auth/google.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	sysauth "github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/status"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateTTL = 10 * time.Minute

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleConfigured reports whether Google sign-in is available.
func (h *Handler) GoogleConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeGoogleLogin handles GET /auth/google. It issues a one-time state
// token and redirects to Google's consent screen.
func (h *Handler) ServeGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.GoogleConfigured() {
		h.Log.Warn("Google OAuth not configured")
		httpjson.Error(w, http.StatusServiceUnavailable, "google sign-in is not available")
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	state, err := h.StateStore.Issue(ctx, returnURL, stateTTL)
	if err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", url),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeGoogleCallback handles GET /auth/google/callback. On first login
// the user document is created with the student role; later logins just
// open a session.
func (h *Handler) ServeGoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.AuditLog.GoogleLoginFailed(ctx, r, "consent denied")
		h.redirectError(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectError(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.AuditLog.GoogleLoginFailed(ctx, r, "invalid state")
		h.redirectError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectError(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.AuditLog.GoogleLoginFailed(ctx, r, "token exchange failed")
		h.redirectError(w, r, "token_exchange")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.AuditLog.GoogleLoginFailed(ctx, r, "userinfo fetch failed")
		h.redirectError(w, r, "user_info")
		return
	}

	u, firstLogin, err := h.findOrCreateGoogleUser(ctxTimeout, googleUser)
	if err != nil {
		if err == errUserDisabled {
			h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.Email)
			h.redirectError(w, r, "account_disabled")
			return
		}
		h.Log.Error("google callback: user lookup failed", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}

	su := &sysauth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("session save failed", zap.Error(err), zap.String("user_id", su.ID))
		h.redirectError(w, r, "session")
		return
	}

	h.AuditLog.GoogleLoginSuccess(ctx, r, u.ID, u.Email, firstLogin)
	h.Log.Info("user signed in via Google",
		zap.String("user_id", su.ID),
		zap.Bool("first_login", firstLogin))

	http.Redirect(w, r, safeReturn(returnURL), http.StatusSeeOther)
}

var errUserDisabled = fmt.Errorf("user disabled")

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// findOrCreateGoogleUser looks up a user by email, creating the account
// on first login. Returned firstLogin is true when the document was
// created by this call. The partially filled user is returned alongside
// errUserDisabled so the caller can audit the attempt.
func (h *Handler) findOrCreateGoogleUser(ctx context.Context, gu *googleUserInfo) (*models.User, bool, error) {
	u, err := h.Users.GetByEmail(ctx, gu.Email)
	if err == nil {
		if u.Status == status.Disabled {
			return u, false, errUserDisabled
		}
		return u, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	created, err := h.Users.Create(ctx, models.User{
		FullName:           gu.Name,
		Email:              gu.Email,
		AuthMethod:         "google",
		VerificationStatus: "verified",
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			// Lost a race with a concurrent first login; the document exists now.
			u, err = h.Users.GetByEmail(ctx, gu.Email)
			return u, false, err
		}
		return nil, false, err
	}
	return &created, true, nil
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}

// safeReturn keeps post-login redirects on-site. Absolute URLs and
// protocol-relative paths fall back to the root.
func safeReturn(returnURL string) string {
	if returnURL == "" || !strings.HasPrefix(returnURL, "/") || strings.HasPrefix(returnURL, "//") {
		return "/"
	}
	return returnURL
}
