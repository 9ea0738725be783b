// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "waveline/docs" // swagger docs
	"waveline/internal/cache"
	"waveline/internal/config"
	"waveline/internal/database"
	"waveline/internal/mailing"
	"waveline/internal/middleware"
	"waveline/internal/models"
	"waveline/internal/notifications"
	"waveline/internal/observability"
	"waveline/internal/repository"
	"waveline/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "waveline-api"
	tokenAudience = "waveline-client"
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
	traceShutdown  func(context.Context) error

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	engagementRepo   repository.EngagementRepository
	subRepo          repository.SubscriptionRepository
	rankingRepo      repository.RankingRepository
	notificationRepo repository.NotificationRepository
	tokenRepo        repository.RefreshTokenRepository

	notifier   *notifications.Notifier
	dispatcher *notifications.Dispatcher
	mail       *mailing.Sender

	authService         *service.AuthService
	userService         *service.UserService
	postService         *service.PostService
	engagementService   *service.EngagementService
	subscriptionService *service.SubscriptionService
	recommendService    *service.RecommendationService
	notificationService *service.NotificationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("waveline-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
	}

	server.userRepo = repository.NewUserRepository(db)
	server.postRepo = repository.NewPostRepository(db)
	server.commentRepo = repository.NewCommentRepository(db)
	server.engagementRepo = repository.NewEngagementRepository(db)
	server.subRepo = repository.NewSubscriptionRepository(db)
	server.rankingRepo = repository.NewRankingRepository(db)
	server.notificationRepo = repository.NewNotificationRepository(db)
	server.tokenRepo = repository.NewRefreshTokenRepository(db)

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}
	server.dispatcher = notifications.NewDispatcher(server.notificationRepo, server.notifier)
	server.mail = mailing.NewSender(&mailing.LogMailer{From: cfg.MailFrom}, cfg.FrontendURL)

	server.authService = service.NewAuthService(server.userRepo, server.tokenRepo, nil)
	server.userService = service.NewUserService(server.userRepo, server.postRepo, server.commentRepo, server.subRepo, nil)
	server.postService = service.NewPostService(server.postRepo, server.isSuperuserByUserID)
	server.engagementService = service.NewEngagementService(
		server.engagementRepo, server.postRepo, server.commentRepo,
		server.isSuperuserByUserID, server.dispatcher)
	server.subscriptionService = service.NewSubscriptionService(server.subRepo, server.userRepo, server.dispatcher)
	server.recommendService = service.NewRecommendationService(server.rankingRepo, nil)
	server.notificationService = service.NewNotificationService(server.notificationRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span per request; sets the traceID local picked up below
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Waveline Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Post("/verify-email", s.VerifyEmail)
	auth.Post("/resend-verification", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "resend_verification"), s.ResendVerification)
	auth.Post("/forgot-password", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)
	auth.Post("/reset-password", s.ResetPassword)

	// Post routes
	post := api.Group("/post")
	post.Get("/", s.GetPosts)
	post.Post("/create", s.AuthRequired(), middleware.RateLimit(
		s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	post.Get("/:id", s.GetPost)
	post.Patch("/:id", s.AuthRequired(), s.UpdatePost)
	post.Patch("/:id/deactivate", s.AuthRequired(), s.DeactivatePost)
	post.Delete("/:id", s.AuthRequired(), s.DeletePost)

	// Like routes
	like := api.Group("/like", s.AuthRequired())
	like.Post("/post/:postId", s.LikePost)
	like.Get("/post/:postId", s.GetPostLikes)
	like.Delete("/post/:postId", s.UnlikePost)
	like.Post("/comment/:commentId", s.LikeComment)
	like.Get("/comment/:commentId", s.GetCommentLikes)
	like.Delete("/comment/:commentId", s.UnlikeComment)

	// Comment routes
	comment := api.Group("/comment")
	comment.Post("/post/:postId", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comment.Get("/post/:postId", s.GetComments)
	comment.Patch("/:commentId", s.AuthRequired(), s.UpdateComment)
	comment.Delete("/:commentId", s.AuthRequired(), s.DeleteComment)

	// User routes
	user := api.Group("/user")
	me := user.Group("/me", s.AuthRequired())
	me.Get("/", s.GetMe)
	me.Get("/posts", s.GetMyPosts)
	me.Get("/profile", s.GetMyProfile)
	me.Patch("/profile/bio", s.UpdateBio)
	me.Patch("/profile/avatar", s.UpdateAvatar)
	me.Get("/profile/liked-posts", s.GetLikedPosts)
	me.Post("/subscriptions/subscribe/:followingId", s.Subscribe)
	me.Delete("/subscriptions/unsubscribe/:followingId", s.Unsubscribe)
	me.Get("/subscriptions/followers", s.GetFollowers)
	me.Get("/subscriptions/following", s.GetFollowing)
	me.Get("/notifications", s.GetNotifications)
	me.Get("/notifications/unread-count", s.GetUnreadCount)
	me.Patch("/notifications/read-all", s.MarkAllNotificationsRead)
	me.Patch("/notifications/:notificationId/read", s.MarkNotificationRead)
	user.Get("/:userId/follow-stats", s.GetFollowStats)
	user.Get("/:userId/posts", s.GetUserPosts)

	// Home routes
	home := api.Group("/home")
	home.Get("/trending-posts", s.TrendingPosts)
	home.Get("/trending-tags", s.TrendingTags)
	home.Get("/trending-users", s.TrendingUsers)
	home.Get("/stats", s.SiteStats)
	home.Get("/recommendation", s.AuthRequired(), s.Recommendation)
	home.Get("/feed", s.AuthRequired(), s.Feed)

	// Admin routes (superuser only)
	admin := api.Group("/admin", s.AuthRequired(), s.SuperuserRequired())
	admin.Get("/statistic/users", s.AdminUserStats)
	admin.Get("/statistic/users/new/:days", s.AdminNewUsers)
	admin.Get("/statistic/users/unverified/:days", s.AdminUnverifiedUsers)
	admin.Get("/statistic/users/good", s.AdminGoodUsers)
	admin.Patch("/deactivate/:userId", s.AdminDeactivateUser)
	admin.Patch("/reactivate/:userId", s.AdminReactivateUser)
	admin.Delete("/delete/:userId", s.AdminDeleteUser)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// SuperuserRequired returns middleware that rejects non-superuser users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) SuperuserRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)

		admin, err := s.isSuperuser(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewNotAllowedError("Superuser access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware. It accepts access
// tokens only; refresh and verification tokens are rejected by type.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}
		if tokenType, typeOk := claims["type"].(string); !typeOk || tokenType != tokenTypeAccess {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token type"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	traceShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "waveline-api",
		ServiceVersion: "1.0",
		Environment:    s.config.Env,
		Enabled:        s.config.TracingEnabled,
		Exporter:       s.config.TracingExporter,
		OTLPEndpoint:   s.config.OTLPEndpoint,
		SamplerRatio:   s.config.TracingSampler,
	})
	if err != nil {
		cancel()
		return fmt.Errorf("tracing init failed: %w", err)
	}
	s.traceShutdown = traceShutdown

	app := fiber.New(fiber.Config{
		AppName: "Waveline API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	s.dispatcher.Start(s.shutdownCtx)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Shutdown the HTTP server first so no new work is enqueued.
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Drain the notification dispatcher.
	if s.dispatcher != nil {
		s.dispatcher.Stop()
	}
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Flush any buffered spans
	if s.traceShutdown != nil {
		if terr := s.traceShutdown(ctx); terr != nil {
			log.Printf("error shutting down tracing: %v", terr)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
