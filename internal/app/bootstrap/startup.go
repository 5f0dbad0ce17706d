// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	eventstore "github.com/campushub/campushub/internal/app/store/events"
	notificationstore "github.com/campushub/campushub/internal/app/store/notifications"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/fanout"
	"github.com/campushub/campushub/internal/app/system/push"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup-owned background state, torn down again in Shutdown.
// Waffle runs Startup before BuildHandler, so BuildHandler can rely on
// these being set.
var (
	fanoutSvc     *fanout.Service
	pushPublisher *push.Publisher
	promoter      *workers.EventPromoter
	watcher       *workers.AnnouncementWatcher

	// inlineFanout is set when the announcements collection cannot be
	// watched (standalone Mongo without an oplog); the announcements
	// handler then delivers notifications itself after each create.
	inlineFanout bool
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the notification fan-out pipeline, starts the background workers, and
// promotes the configured superadmin account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied", zap.Int("count", n))
	}

	db := deps.MongoDatabase

	fanoutSvc = fanout.New(userstore.New(db), notificationstore.New(db), logger)

	if appCfg.AMQPURL != "" {
		pub, err := push.NewPublisher(appCfg.AMQPURL, appCfg.AMQPExchange)
		if err != nil {
			// Push is an enhancement; the inbox still fills without it.
			logger.Warn("push publisher unavailable", zap.Error(err))
		} else {
			pushPublisher = pub
			fanoutSvc.SetPublisher(pub)
			logger.Info("push publisher connected", zap.String("exchange", appCfg.AMQPExchange))
		}
	}

	watcher = workers.NewAnnouncementWatcher(db, fanoutSvc, logger)
	if err := watcher.Start(); err != nil {
		logger.Warn("change stream unavailable, using inline fan-out", zap.Error(err))
		watcher = nil
		inlineFanout = true
	}

	promoter = workers.NewEventPromoter(eventstore.New(db), logger, appCfg.PromoteInterval)
	promoter.Start()

	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, db, appCfg.SuperAdminEmail, logger); err != nil {
			return err
		}
	}

	return nil
}

// ensureSuperAdmin promotes the configured account to admin. The account
// must already exist; admins sign up like everyone else and are promoted
// here or by another admin.
func ensureSuperAdmin(ctx context.Context, db *mongo.Database, email string, logger *zap.Logger) error {
	users := userstore.New(db)

	findCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := users.GetByEmail(findCtx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.Warn("superadmin account not found, sign up first", zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}
	if u.Role == "admin" {
		return nil
	}

	if err := users.SetRole(findCtx, u.ID, "admin"); err != nil {
		return err
	}
	logger.Info("superadmin promoted", zap.String("email", email))
	return nil
}
