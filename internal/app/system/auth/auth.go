// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"
)

// SessionUser is what we cache in the session & inject into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// UserFetcher loads fresh user data for a session on each request, so
// role changes and disabled accounts take effect immediately.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

// SessionManager owns the cookie session store and the bearer-token
// verifier. Browser clients authenticate with the session cookie; API
// clients send `Authorization: Bearer <jwt>` issued at login.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
	tokens  *TokenIssuer
}

// NewSessionManager initializes the cookie store. The secure flag
// controls Secure cookies and the SameSite mode: None in production
// (HTTPS, cross-site SPA), Lax for local dev over http.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: sessionName, log: logger}, nil
}

// SetUserFetcher installs the per-request user refresher.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// SetTokenIssuer enables bearer-token authentication.
func (m *SessionManager) SetTokenIssuer(t *TokenIssuer) { m.tokens = t }

// Tokens returns the configured token issuer (nil if bearer auth is off).
func (m *SessionManager) Tokens() *TokenIssuer { return m.tokens }

// SignIn writes the user into the session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		// A cookie signed with a rotated key fails to decode; a fresh
		// session replaces it. Anything else is worth a louder log.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err), zap.String("user_id", u.ID))
		} else {
			m.log.Error("session store error during sign-in, using fresh session",
				zap.Error(err), zap.String("user_id", u.ID))
		}
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = u.Role
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if the request carries a
// valid session cookie or bearer token. When a UserFetcher is set, the
// session user is re-fetched so stale roles never linger.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := m.resolveUser(r); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionManager) resolveUser(r *http.Request) *SessionUser {
	// Bearer token first: API clients don't carry cookies.
	if m.tokens != nil {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			u, err := m.tokens.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				m.log.Debug("bearer token rejected", zap.Error(err))
				return nil
			}
			return m.refresh(r.Context(), u)
		}
	}

	sess, _ := m.store.Get(r, m.name)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil
	}
	u := &SessionUser{
		ID:    getString(sess, userIDKey),
		Name:  getString(sess, userNameKey),
		Email: getString(sess, userEmailKey),
		Role:  getString(sess, userRoleKey),
	}
	return m.refresh(r.Context(), u)
}

func (m *SessionManager) refresh(ctx context.Context, u *SessionUser) *SessionUser {
	if m.fetcher == nil {
		return u
	}
	fresh, err := m.fetcher.FetchSessionUser(ctx, u.ID)
	if err != nil {
		// Deleted or disabled account: treat as signed out.
		m.log.Debug("session user fetch failed", zap.String("user_id", u.ID), zap.Error(err))
		return nil
	}
	return fresh
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). API surface: plain 401 JSON, no redirects.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the current user holds one of the allowed roles.
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Unauthorized(w)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httpjson.Forbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithUser returns a request whose context carries u. Exported for
// handler tests.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
