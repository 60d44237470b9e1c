// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "folio/docs" // swagger docs
	"folio/internal/access"
	"folio/internal/auth"
	"folio/internal/bootstrap"
	"folio/internal/config"
	"folio/internal/content"
	"folio/internal/database"
	"folio/internal/featureflags"
	"folio/internal/frontmatter"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/render"
	"folio/internal/repository"
	"folio/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	authorizer   access.Authorizer
	tokens       *auth.TokenManager
	limiter      *middleware.Limiter
	featureFlags *featureflags.Manager

	store    *content.Store
	items    service.AnyItem
	watcher  *content.Watcher
	hub      *notifications.Hub
	notifier *notifications.Notifier

	postService     *service.PostService
	blogService     *service.BlogService
	projectService  *service.ProjectService
	commentService  *service.CommentService
	reactionService *service.ReactionService
	analytics       *service.AnalyticsService
	authService     *service.AuthService
}

// NewServer connects to the database and Redis described by cfg and
// builds a server on top of them. An unreachable Redis is logged and the
// server runs without it.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// rdb may be nil. Use this in tests or when a bootstrap layer owns the
// connections.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Server, error) {
	retrier := database.NewRetrier(cfg.DBRetryAttempts, time.Duration(cfg.DBRetryInitialMS)*time.Millisecond)

	format := frontmatter.FormatLines
	if cfg.ContentFormat == "yaml" {
		format = frontmatter.FormatYAML
	}
	loader := content.NewLoader(cfg.ContentDir, content.Options{
		Glob:       cfg.ContentGlob,
		Format:     format,
		Production: cfg.IsProduction(),
	})

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          rdb,
		promMiddleware: middleware.InitMetrics("folio-api"),
		userRepo:       repository.NewUserRepository(db, rdb, retrier),
		authorizer:     access.NewAllowList(cfg.AdminEmailList()),
		tokens:         auth.NewTokenManager(cfg.SessionSecret, cfg.SiteName, time.Duration(cfg.SessionTTLHours)*time.Hour),
		limiter:        middleware.NewLimiter(rdb, cfg.Env),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		store:          content.NewStore(loader),
		hub:            notifications.NewHub(),
	}

	var events notifications.Publisher = s.hub
	if rdb != nil {
		s.notifier = notifications.NewNotifier(rdb)
		events = s.notifier
	}

	renderer := render.New(render.Options{})
	blogRepo := repository.NewBlogPostRepository(db, retrier)
	projectRepo := repository.NewProjectRepository(db, retrier)

	s.postService = service.NewPostService(s.store, renderer)
	s.blogService = service.NewBlogService(blogRepo)
	s.projectService = service.NewProjectService(projectRepo)
	s.items = service.AnyItem{s.postService, s.blogService, s.projectService}
	s.commentService = service.NewCommentService(
		repository.NewCommentRepository(db, retrier), s.items, s.authorizer, events)
	s.reactionService = service.NewReactionService(
		repository.NewReactionRepository(db, rdb, retrier), s.items, events)
	s.analytics = service.NewAnalyticsService(repository.NewPageViewRepository(db, retrier), cfg.SessionSecret)

	var revoker auth.Revoker
	if rdb != nil {
		revoker = auth.NewRedisRevoker(rdb)
	}
	s.authService = service.NewAuthService(s.userRepo, s.tokens, revoker, s.authorizer)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Auth-Callback-Secret, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(middleware.LoadSession(s.authService))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", middleware.RequireAdmin(s.authorizer), monitor.New(monitor.Config{
		Title: "folio metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/features", s.GetFeatureFlags)

	// File-based posts. Fixed paths come before /:slug.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/categories", s.GetCategories)
	posts.Get("/tags", s.GetTags)
	posts.Get("/featured", s.GetFeaturedPosts)
	posts.Get("/:slug", s.GetPost)

	blog := api.Group("/blog")
	blog.Get("/", s.GetBlogPosts)
	blog.Post("/", middleware.RequireAdmin(s.authorizer), s.CreateBlogPost)
	blog.Get("/:slug", s.GetBlogPost)

	projects := api.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Get("/:slug", s.GetProject)

	comments := api.Group("/comments", s.requireFeature(featureflags.Comments))
	comments.Get("/", s.GetComments)
	comments.Post("/", middleware.RequireSession,
		s.limiter.Handler(5, time.Minute, middleware.FailOpen, "create_comment"), s.CreateComment)
	comments.Put("/", middleware.RequireSession, s.UpdateCommentVisibility)

	reactions := api.Group("/reactions", s.requireFeature(featureflags.Reactions))
	reactions.Get("/", s.GetReactions)
	reactions.Post("/", s.limiter.Handler(30, time.Minute, middleware.FailOpen, "reaction"), s.SetReaction)
	reactions.Delete("/", s.DeleteReaction)

	authGroup := api.Group("/auth")
	authGroup.Post("/callback", s.limiter.Handler(10, time.Minute, middleware.FailClosed, "auth_callback"), s.AuthCallback)
	authGroup.Get("/session", s.GetSession)
	authGroup.Post("/signout", s.SignOut)

	api.Post("/views", s.requireFeature(featureflags.PageViews),
		s.limiter.Handler(60, time.Minute, middleware.FailOpen, "page_view"), s.RecordPageView)

	admin := api.Group("/admin", middleware.RequireAdmin(s.authorizer))
	admin.Get("/analytics", s.GetAnalytics)

	api.Get("/ws/posts/:slug", s.requireUpgrade, s.PostEventsHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports the database and Redis state. Redis is optional,
// so only a failing database makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	contentStatus := "healthy"
	if _, err := s.store.Collection(ctx); err != nil {
		contentStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || contentStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"content":  contentStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   s.config.SiteName,
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusNotFound {
				return models.RespondWithError(c, fiber.StatusNotFound,
					models.NewNotFoundError("Route", c.Path()))
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()), slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				observability.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	if s.config.ContentWatch {
		w, err := content.NewWatcher(s.config.ContentDir, s.store, 250*time.Millisecond)
		if err != nil {
			observability.Logger.Warn("content watcher disabled", slog.String("error", err.Error()))
		} else {
			s.watcher = w
			go w.Run(s.shutdownCtx)
		}
	}

	observability.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		observability.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
	}

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			observability.Logger.Error("error closing content watcher", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}
