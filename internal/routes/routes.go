package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pictocat/pictocat/internal/auth"
	"github.com/pictocat/pictocat/internal/catalog"
	"github.com/pictocat/pictocat/internal/community"
	"github.com/pictocat/pictocat/internal/config"
	"github.com/pictocat/pictocat/internal/logging"
	"github.com/pictocat/pictocat/internal/metrics"
	"github.com/pictocat/pictocat/internal/middleware"
	"github.com/pictocat/pictocat/internal/notification"
	"github.com/pictocat/pictocat/internal/profile"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Setup configures middlewares and all application routes. Without a
// database the in-memory repositories are used, which is only allowed in
// development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(logging.Component(d.Logger, "http")))
	app.Use(d.Metrics.Middleware())

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", d.Metrics.Handler())

	var (
		catalogRepo   catalog.Repository
		profileRepo   profile.Repository
		communityRepo community.Repository
	)
	if d.DB != nil {
		catalogRepo = catalog.NewPostgresRepository(d.DB)
		profileRepo = profile.NewPostgresRepository(d.DB)
		communityRepo = community.NewPostgresRepository(d.DB)
	} else {
		catalogRepo = catalog.NewMemoryRepository()
		profileRepo = profile.NewMemoryRepository()
		communityRepo = community.NewMemoryRepository(profileRepo)
	}

	notifier := d.Metrics.Notifier(notification.NewLoggerNotifier(logging.Component(d.Logger, "notification")))
	catalogSvc := catalog.NewService(catalogRepo, d.Cache, d.Cfg.CatalogCacheTTL, logging.Component(d.Logger, "catalog"))
	if d.Cfg.ShouldSeedCatalog() {
		if err := seedCatalog(catalogSvc); err != nil {
			return err
		}
	}
	profileSvc := profile.NewService(profileRepo, profile.StarterImages(catalogSvc.StarterIDs(d.Cfg.StarterImageCount)),
		notifier, logging.Component(d.Logger, "profile"))
	profileSvc.ObserveSaves(d.Metrics.ObserveSave)
	communitySvc := community.NewService(communityRepo, profileRepo, logging.Component(d.Logger, "community"))
	tokens := auth.NewService(d.Cfg.JWTSecret, d.Cfg.WebhookSecret)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID := middleware.RequestIDFrom(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterCatalogRoutes(api, catalog.NewHandler(catalogSvc))
	profileHandler := profile.NewHandler(profileSvc, tokens)
	RegisterWebhookRoutes(api, profileHandler)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(tokens), middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterProfileRoutes(protected, profileHandler, middleware.SaveRateLimit(d.Cache, d.Cfg.SaveRateLimitPerMin, d.Logger))
	RegisterCommunityRoutes(protected, community.NewHandler(communitySvc), profileHandler)

	return nil
}

func seedCatalog(svc *catalog.Service) error {
	images, err := catalog.MasterCatalog()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := svc.Seed(ctx, images); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
