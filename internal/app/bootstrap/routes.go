// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	announcementsfeature "github.com/campushub/campushub/internal/app/features/announcements"
	authfeature "github.com/campushub/campushub/internal/app/features/auth"
	clubsfeature "github.com/campushub/campushub/internal/app/features/clubs"
	eventsfeature "github.com/campushub/campushub/internal/app/features/events"
	healthfeature "github.com/campushub/campushub/internal/app/features/health"
	notificationsfeature "github.com/campushub/campushub/internal/app/features/notifications"
	placementsfeature "github.com/campushub/campushub/internal/app/features/placements"
	profilefeature "github.com/campushub/campushub/internal/app/features/profile"
	usersfeature "github.com/campushub/campushub/internal/app/features/users"
	announcementstore "github.com/campushub/campushub/internal/app/store/announcements"
	auditstore "github.com/campushub/campushub/internal/app/store/audit"
	clubstore "github.com/campushub/campushub/internal/app/store/clubs"
	eventstore "github.com/campushub/campushub/internal/app/store/events"
	notificationstore "github.com/campushub/campushub/internal/app/store/notifications"
	oauthstatestore "github.com/campushub/campushub/internal/app/store/oauthstate"
	placementstore "github.com/campushub/campushub/internal/app/store/placements"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/auditlog"
	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/visibility"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It creates the session manager, builds
// the stores once, and mounts a feature router per API area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// LoadSessionUser fetches fresh user data on each request, so role
	// changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	if appCfg.JWTSecret != "" {
		issuer, err := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.JWTExpiry)
		if err != nil {
			logger.Error("token issuer init failed", zap.Error(err))
			return nil, err
		}
		sessionMgr.SetTokenIssuer(issuer)
	}

	users := userstore.New(db)
	clubs := clubstore.New(db)
	announcements := announcementstore.New(db)
	events := eventstore.New(db)
	placements := placementstore.New(db)
	notifications := notificationstore.New(db)

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	vis := visibility.New(appCfg.BroadcastClubs)

	r := chi.NewRouter()

	// Global auth middleware: loads the session user (or bearer token
	// subject) into context for every request.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authHandler := authfeature.NewHandler(users, sessionMgr, audit,
		oauthstatestore.New(db), appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, sessionMgr))

	// Clubs and the subscription registry
	clubsHandler := clubsfeature.NewHandler(clubs, users, announcements, audit, logger)
	r.Mount("/clubs", clubsfeature.Routes(clubsHandler, sessionMgr))

	// Announcements with visibility filtering
	announcementsHandler := announcementsfeature.NewHandler(announcements, clubs, users, vis, audit, logger)
	if inlineFanout {
		announcementsHandler.SetInlineFanout(fanoutSvc)
	}
	r.Mount("/announcements", announcementsfeature.Routes(announcementsHandler, sessionMgr))

	// Events
	eventsHandler := eventsfeature.NewHandler(events, audit, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	// Placement drives
	placementsHandler := placementsfeature.NewHandler(placements, users, audit, logger)
	r.Mount("/placements", placementsfeature.Routes(placementsHandler, sessionMgr))

	// Notification inbox
	notificationsHandler := notificationsfeature.NewHandler(notifications, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// Own profile
	profileHandler := profilefeature.NewHandler(users, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Admin user management
	usersHandler := usersfeature.NewHandler(users, audit, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	return r, nil
}
