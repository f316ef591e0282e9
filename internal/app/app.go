package app

import (
	"cbt_backend/internal/config"
	"cbt_backend/internal/controller"
	"cbt_backend/internal/repository"
	"cbt_backend/internal/service"
	"cbt_backend/pkg/database"
	"cbt_backend/pkg/logger"
	"cbt_backend/pkg/monitoring"
	"cbt_backend/pkg/security"
	"cbt_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	paper    *repository.PaperRepository
	question *repository.QuestionRepository
	template *repository.TemplateRepository
	attempt  *repository.AttemptRepository
	answer   *repository.AnswerRepository
}

type services struct {
	auth     *service.AuthService
	paper    *service.PaperService
	question *service.QuestionService
	template *service.TemplateService
	attempt  *service.AttemptService
	insight  *service.InsightService
}

type controllers struct {
	auth     *controller.AuthController
	paper    *controller.PaperController
	question *controller.QuestionController
	template *controller.TemplateController
	attempt  *controller.AttemptController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig applies a hot-reloaded configuration to every registered
// callback. Connection settings are not reapplied; only tunables registered
// through callbacks take effect without a restart.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		paper:    repository.NewPaperRepository(db),
		question: repository.NewQuestionRepository(db),
		template: repository.NewTemplateRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		answer:   repository.NewAnswerRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.paper = service.NewPaperService(repos.paper)
	s.question = service.NewQuestionService(repos.question, repos.paper, rdb)
	s.template = service.NewTemplateService(repos.template, repos.paper)
	s.attempt = service.NewAttemptService(repos.template, repos.question, repos.attempt, repos.answer)
	s.insight = service.NewInsightService(s.attempt, cfg.AI, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		paper:    controller.NewPaperController(s.paper),
		question: controller.NewQuestionController(s.question),
		template: controller.NewTemplateController(s.template),
		attempt:  controller.NewAttemptController(s.attempt, s.insight),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the overdue-attempt sweep. The sweep is the
// eventual-consistency half of the timeout contract; mutating calls on an
// expired attempt finish it immediately regardless.
func (a *App) startBackgroundTasks(s *services) {
	interval := time.Duration(a.Config.Attempt.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			finished, err := s.attempt.ExpireOverdue()
			if err != nil {
				logger.Log.Error("overdue attempt sweep failed", zap.Error(err))
				continue
			}
			if finished > 0 {
				logger.Log.Info("overdue attempts finished", zap.Int("count", finished))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, question caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("cbt-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
