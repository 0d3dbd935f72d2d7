package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advanced-blog/pkg/activity"
	"advanced-blog/pkg/cache"
	"advanced-blog/pkg/config"
	"advanced-blog/pkg/database"
	"advanced-blog/pkg/jwt"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/middleware"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/s3"
	"advanced-blog/pkg/validation"
	accountsHTTP "advanced-blog/services/accounts/internal/controller/http"
	"advanced-blog/services/accounts/internal/repo/persistent"
	"advanced-blog/services/accounts/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "advanced-blog/services/accounts/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithLevel(cfg.LogLevel).With(zap.String("service", "accounts"))

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Error("Failed to migrate schema: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		// Redis is optional for the accounts service
		log.Warn("Failed to connect to redis: %v (rate limiting disabled)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("Failed to create S3 client: %v (avatar uploads disabled)", err)
		s3Client = nil
	}

	if err := validation.Register(); err != nil {
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwt.NewService(cfg.JWTSecret).WithLifetime(cfg.JWTLifetime),
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	userRepo := persistent.NewUserRepository(a.db)
	recorder := activity.NewRecorder(a.db)

	var images usecase.ImageStore
	if a.s3Client != nil {
		images = a.s3Client
	}

	// Initialize use cases
	accountUseCase := usecase.NewAccountUseCase(userRepo, recorder, a.jwtService, images, a.log)

	// Initialize HTTP handlers
	accountHandler := accountsHTTP.NewAccountHandler(accountUseCase, a.log, a.cfg.HomeURL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(a.log), gin.Recovery())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimitPerMinute, time.Minute))
	{
		api.POST("/register", accountHandler.Register)
		api.POST("/login", accountHandler.Login)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		protected.Use(middleware.ActivityMiddleware(recorder, a.log))
		{
			protected.GET("/me", accountHandler.Me)
			protected.PUT("/me", accountHandler.UpdateMe)
			protected.POST("/me/avatar", accountHandler.UploadAvatar)
			protected.GET("/me/activity", accountHandler.MyActivity)
		}

		// Admin routes send anonymous callers to the login page
		admin := api.Group("/users")
		admin.Use(middleware.LoginRequiredMiddleware(a.jwtService, a.cfg.LoginURL))
		admin.Use(middleware.ActivityMiddleware(recorder, a.log))
		{
			admin.GET("", accountHandler.ListUsers)
			admin.PUT("/:id/role", accountHandler.ChangeRole)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Accounts service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down accounts service...")
}

func (a *App) Shutdown() error {
	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	// Close database connection
	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	a.log.Info("Accounts service exited")
	_ = a.log.Sync()
	return nil
}
