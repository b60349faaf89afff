package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	sessionUsecases "github.com/zenthea/sessionguard/internal/application/session/usecases"
	settingApp "github.com/zenthea/sessionguard/internal/application/setting"
	timeoutApp "github.com/zenthea/sessionguard/internal/application/timeout"
	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/infrastructure/auth"
	"github.com/zenthea/sessionguard/internal/infrastructure/cache"
	"github.com/zenthea/sessionguard/internal/infrastructure/config"
	"github.com/zenthea/sessionguard/internal/infrastructure/permission"
	"github.com/zenthea/sessionguard/internal/infrastructure/pubsub"
	"github.com/zenthea/sessionguard/internal/infrastructure/ratelimit"
	"github.com/zenthea/sessionguard/internal/infrastructure/repository"
	"github.com/zenthea/sessionguard/internal/infrastructure/scheduler"
	"github.com/zenthea/sessionguard/internal/interfaces/http/handlers"
	adminHandlers "github.com/zenthea/sessionguard/internal/interfaces/http/handlers/admin"
	"github.com/zenthea/sessionguard/internal/interfaces/http/middleware"
	"github.com/zenthea/sessionguard/internal/shared/goroutine"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// Container holds the infrastructure components, services, handlers and
// background workers of the server, and owns their shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client
	clock  clockwork.Clock

	// Repositories
	sessionRepo session.Repository
	eventRepo   *repository.TimeoutEventRepository

	// Services
	timeoutService *timeoutApp.Service
	settingService *settingApp.Service
	activityBus    *pubsub.ActivityBus
	enforcer       *permission.Enforcer
	jwtSvc         *auth.JWTService

	// Handlers
	sessionTimeoutHandler *handlers.SessionTimeoutHandler
	tenantTimeoutHandler  *adminHandlers.TenantTimeoutHandler
	healthHandler         *handlers.HealthHandler

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	activityLimiter      *middleware.RateLimiter

	// Background workers
	schedulerManager *scheduler.SchedulerManager
	cancelWorkers    context.CancelFunc
	workersDone      <-chan struct{}
}

// NewContainer wires the application. redisClient must not be nil; Redis
// outages at runtime only degrade caching, rate limiting and cross-instance delivery.
func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, clock clockwork.Clock, log logger.Interface) (*Container, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
		clock:  clock,
	}

	if err := c.initServices(); err != nil {
		return nil, err
	}
	if err := c.initPermissions(); err != nil {
		return nil, err
	}
	c.initHandlers()
	if err := c.initScheduler(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initServices() error {
	defaults, err := timeout.NewPolicy(
		c.cfg.Timeout.DefaultTimeout(),
		c.cfg.Timeout.DefaultWarningLead(),
		c.cfg.Timeout.DefaultEnabled,
	)
	if err != nil {
		return fmt.Errorf("invalid default timeout policy: %w", err)
	}

	c.sessionRepo = repository.NewSessionRepository(c.db)
	c.eventRepo = repository.NewTimeoutEventRepository(c.db, c.log.Named("timeout_events"))
	settingRepo := repository.NewTenantSettingRepository(c.db, c.log.Named("tenant_settings"))

	configCache := cache.NewTenantTimeoutConfigCache(
		c.redis,
		repository.NewTenantTimeoutConfigRepository(settingRepo),
		c.cfg.Timeout.CacheTTL(),
		c.log.Named("tenant_timeout_cache"),
	)

	c.activityBus = pubsub.NewActivityBus(c.redis, c.log.Named("activity_bus"))

	c.timeoutService = timeoutApp.NewService(
		timeoutApp.NewPolicyResolver(configCache, defaults, c.log.Named("policy_resolver")),
		c.sessionRepo,
		c.eventRepo,
		sessionUsecases.NewLogoutUseCase(c.sessionRepo, c.clock, c.log.Named("logout")),
		c.activityBus,
		c.clock,
		timeoutApp.ServiceConfig{
			TickInterval:     c.cfg.Timeout.TickInterval(),
			ActivityThrottle: c.cfg.Timeout.ActivityThrottle(),
			LogoutTimeout:    c.cfg.Timeout.LogoutTimeout(),
		},
		c.log.Named("session_timeout"),
	)

	c.settingService = settingApp.NewService(settingRepo, configCache, defaults, c.clock, c.log.Named("tenant_policy"))
	c.jwtSvc = auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.Issuer, c.clock)

	return nil
}

func (c *Container) initPermissions() error {
	enforcer, err := permission.NewEnforcer(c.db, c.log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := permission.InitSessionTimeoutPermissions(enforcer, c.log.Named("permission")); err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}
	c.enforcer = enforcer
	return nil
}

func (c *Container) initHandlers() {
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.log.Named("auth"))
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, c.log.Named("permission"))

	if perMinute := c.cfg.RateLimit.ActivityPerMinute; perMinute > 0 {
		c.activityLimiter = middleware.NewRateLimiter(
			ratelimit.NewRedisRateLimiter(c.redis, c.clock),
			"activity",
			c.log.Named("ratelimit"),
			ratelimit.Limit{Requests: perMinute, Window: time.Minute},
		)
	}

	c.sessionTimeoutHandler = handlers.NewSessionTimeoutHandler(c.timeoutService, c.clock, handlers.DefaultHeartbeatInterval, c.log.Named("session_timeout_handler"))
	c.tenantTimeoutHandler = adminHandlers.NewTenantTimeoutHandler(c.settingService, c.log.Named("tenant_timeout_handler"))
	c.healthHandler = handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		},
	}, c.timeoutService, c.log.Named("health"))
}

func (c *Container) initScheduler() error {
	if !c.cfg.Retention.Enabled {
		return nil
	}

	manager, err := scheduler.NewSchedulerManager(c.clock, c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	day := 24 * time.Hour
	err = manager.RegisterRetentionJobs(
		c.cfg.Retention.Interval(),
		scheduler.NewRevokedSessionRetentionJob(c.sessionRepo, c.clock, time.Duration(c.cfg.Retention.RevokedSessionDays)*day),
		scheduler.NewTimeoutEventRetentionJob(c.eventRepo, c.clock, time.Duration(c.cfg.Retention.EventDays)*day),
	)
	if err != nil {
		return fmt.Errorf("failed to register retention jobs: %w", err)
	}

	c.schedulerManager = manager
	return nil
}

// StartWorkers launches the activity relay and the scheduler.
func (c *Container) StartWorkers(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelWorkers = cancel

	c.workersDone = goroutine.SafeGoDone(c.log, "activity-bus", func() {
		if err := c.activityBus.Run(ctx); err != nil && ctx.Err() == nil {
			c.log.Errorw("activity bus stopped", "error", err)
		}
	})

	if c.schedulerManager != nil {
		c.schedulerManager.Start()
	}
}

// Shutdown stops the workers and disposes every session controller.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Shutdown(); err != nil {
			c.log.Warnw("scheduler shutdown failed", "error", err)
		}
	}

	c.timeoutService.Shutdown()

	if c.cancelWorkers != nil {
		c.cancelWorkers()
		<-c.workersDone
	}

	c.log.Infow("container shutdown complete")
}
