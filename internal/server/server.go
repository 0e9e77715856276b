// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "socialnet/docs" // swagger docs
	"socialnet/internal/bootstrap"
	"socialnet/internal/config"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/repository"
	"socialnet/internal/service"
	"socialnet/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	blobs          storage.BlobStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *middleware.TokenAuth
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo repository.UserRepository

	notifier  *notifications.Notifier
	hub       *notifications.Hub
	publisher notifications.Publisher

	accounts    *service.AccountService
	friendships *service.FriendshipService
	posts       *service.PostService
	comments    *service.CommentService
	attachments *service.AttachmentService
	reactions   *service.ReactionService
}

// NewServer connects every backend described by cfg and builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Blobs)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; realtime events are then delivered to this
// instance's connections only.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs storage.BlobStore) (*Server, error) {
	if db == nil {
		return nil, errors.New("server: database is required")
	}
	if blobs == nil {
		return nil, errors.New("server: blob store is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		blobs:          blobs,
		promMiddleware: middleware.InitMetrics("socialnet-api"),
		tokens:         middleware.NewTokenAuth(cfg.JWTSecret, redisClient),
		userRepo:       userRepo,
		hub:            notifications.NewHub(),
	}

	// With Redis, events fan out across instances and come back through the
	// hub's subscription; without it they go straight to the local hub.
	s.publisher = s.hub
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.publisher = s.notifier
	}

	isAdmin := service.AdminCheckFromUsers(userRepo)
	maxUpload := cfg.UploadMaxBytes()
	s.accounts = service.NewAccountService(userRepo, s.tokens, blobs, maxUpload)
	s.friendships = service.NewFriendshipService(friendshipRepo, userRepo, s.publisher)
	s.posts = service.NewPostService(postRepo, isAdmin)
	s.comments = service.NewCommentService(commentRepo, postRepo, isAdmin, s.publisher)
	s.attachments = service.NewAttachmentService(attachmentRepo, postRepo, blobs, maxUpload)
	s.reactions = service.NewReactionService(likeRepo, postRepo, s.publisher)

	return s, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Social Network API",
		BodyLimit: int(s.config.UploadMaxBytes()) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := []fiber.Handler{s.tokens.Required(), s.ActiveUserRequired()}

	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimitWithPolicy(s.redis, 10, 5*time.Minute, middleware.FailClosed, "login"), s.Login)
	users.Post("/logout", s.tokens.Required(), s.Logout)
	users.Get("/", s.tokens.Optional(), s.ListUsers)
	// Specific /:id/:resource routes before the generic /:id routes.
	users.Put("/:id/personal-image", append(required, s.SetPersonalImage)...)
	users.Get("/:id", s.tokens.Optional(), s.GetUser)
	users.Put("/:id", append(required, s.UpdateUser)...)
	users.Patch("/:id", append(required, s.PartialUpdateUser)...)
	users.Delete("/:id", append(required, s.DeleteUser)...)

	friendships := api.Group("/friendships", required...)
	friendships.Get("/", s.ListFriendships)
	friendships.Post("/", middleware.RateLimit(s.redis, 20, 5*time.Minute, "friendship_request"), s.CreateFriendship)
	friendships.Post("/:id/accept-friendship", s.AcceptFriendship)
	friendships.Post("/:id/reject-friendship", s.RejectFriendship)
	friendships.Get("/:id", s.GetFriendship)
	friendships.Delete("/:id", s.DeleteFriendship)

	posts := api.Group("/posts", required...)
	posts.Get("/", s.ListPosts)
	posts.Post("/", middleware.RateLimit(s.redis, 30, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like-dislike", s.LikeDislikePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Patch("/:id", s.PartialUpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := api.Group("/comments", required...)
	comments.Get("/", s.ListComments)
	comments.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Patch("/:id", s.PartialUpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	attachments := api.Group("/attachments", required...)
	attachments.Get("/", s.ListAttachments)
	attachments.Post("/", s.CreateAttachment)
	attachments.Get("/:id", s.GetAttachment)

	ws := api.Group("/ws", s.tokens.Required())
	ws.Get("/", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"websocket_connections": s.hub.ConnectionCount(),
		"time":                  time.Now(),
	})
}

// ActiveUserRequired rejects authenticated callers whose account is no longer
// active. Must be placed after TokenAuth.Required.
func (s *Server) ActiveUserRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.CallerID(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication credentials were not provided"))
		}
		user, err := s.userRepo.GetByID(c.UserContext(), userID)
		if err != nil || !user.IsActive {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewAuthenticationError("You do not have permission to perform this action."))
		}
		return c.Next()
	}
}

// Start builds the app, wires realtime fan-out and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", s.hub.Name(), err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("sql db: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
