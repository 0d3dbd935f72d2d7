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
	"advanced-blog/pkg/flash"
	"advanced-blog/pkg/jwt"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/middleware"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/queue"
	"advanced-blog/pkg/s3"
	"advanced-blog/pkg/validation"
	blogHTTP "advanced-blog/services/blog/internal/controller/http"
	"advanced-blog/services/blog/internal/repo/persistent"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "advanced-blog/services/blog/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithLevel(cfg.LogLevel).With(zap.String("service", "blog"))

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Error("Failed to migrate schema: %v", err)
		return nil, err
	}

	// Redis backs flash messages and rate limiting; both degrade to no-ops without it
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (continuing without flash messages)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("Failed to create S3 client: %v (featured images disabled)", err)
		s3Client = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
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
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	// Initialize repositories
	postRepo := persistent.NewPostRepository(a.db)
	commentRepo := persistent.NewCommentRepository(a.db)
	taxonomyRepo := persistent.NewTaxonomyRepository(a.db)
	userRepo := persistent.NewUserRepository(a.db)
	recorder := activity.NewRecorder(a.db)

	// Optional collaborators must reach the use case as untyped nil
	var images usecase.ImageStore
	if a.s3Client != nil {
		images = a.s3Client
	}
	var notifier usecase.Notifier
	if a.queueClient != nil {
		notifier = a.queueClient
	}
	var flashStore blogHTTP.FlashStore
	if a.redisClient != nil {
		flashStore = flash.NewStore(a.redisClient)
	}

	// Initialize use cases
	postUseCase := usecase.NewPostUseCase(postRepo, commentRepo, taxonomyRepo, userRepo, recorder, images, notifier, a.log)
	commentUseCase := usecase.NewCommentUseCase(commentRepo, postRepo, a.log)
	categoryUseCase := usecase.NewCategoryUseCase(taxonomyRepo, a.log)

	// Initialize HTTP handlers
	resp := blogHTTP.NewResponder(flashStore, a.log, a.cfg.LoginURL, a.cfg.HomeURL)
	postHandler := blogHTTP.NewPostHandler(postUseCase, resp)
	commentHandler := blogHTTP.NewCommentHandler(commentUseCase, resp)
	categoryHandler := blogHTTP.NewCategoryHandler(categoryUseCase, resp)
	messageHandler := blogHTTP.NewMessageHandler(resp)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(a.log), gin.Recovery())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	site := r.Group("/")
	site.Use(middleware.OptionalAuthMiddleware(a.jwtService))
	site.Use(blogHTTP.ActorMiddleware(userRepo, a.log))
	site.Use(middleware.ActivityMiddleware(recorder, a.log))
	site.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimitPerMinute, time.Minute))
	{
		site.GET("/", postHandler.ListPosts)
		site.GET("/category/:slug/", postHandler.CategoryPosts)
		site.GET("/tag/:slug/", postHandler.TagPosts)
		site.GET("/search/", postHandler.Search)
		site.GET("/dashboard/", postHandler.Dashboard)

		site.GET("/post/new/", postHandler.NewPostForm)
		site.POST("/post/new/", postHandler.CreatePost)
		site.GET("/post/:slug/", postHandler.PostDetail)
		site.POST("/post/:slug/", commentHandler.AddComment)
		site.GET("/post/:slug/edit/", postHandler.EditPostForm)
		site.POST("/post/:slug/edit/", postHandler.UpdatePost)
		site.POST("/post/:slug/delete/", postHandler.DeletePost)

		site.POST("/comment/:id/approve/", commentHandler.ApproveComment)
		site.POST("/comment/:id/delete/", commentHandler.DeleteComment)
		site.GET("/comments/pending/", commentHandler.PendingComments)

		site.GET("/categories/", categoryHandler.ListCategories)
		site.POST("/categories/", categoryHandler.CreateCategory)

		site.GET("/messages/", messageHandler.Messages)
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Blog service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down blog service...")
}

func (a *App) Shutdown() error {
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

	// Close RabbitMQ connection
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Blog service exited")
	_ = a.log.Sync()
	return nil
}
