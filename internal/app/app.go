package app

import (
	"context"
	"errors"
	"lingua_tutor_backend/internal/config"
	"lingua_tutor_backend/internal/controller"
	"lingua_tutor_backend/internal/repository"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/pkg/configwatcher"
	"lingua_tutor_backend/pkg/database"
	"lingua_tutor_backend/pkg/logger"
	"lingua_tutor_backend/pkg/monitoring"
	"lingua_tutor_backend/pkg/security"
	"lingua_tutor_backend/pkg/tracing"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "lingua-tutor-backend"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	mu              sync.RWMutex
	tracer          *sdktrace.TracerProvider
	limiter         *security.IPRateLimiter
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	profile    *repository.ProfileRepository
	curriculum *repository.CurriculumRepository
	session    *repository.SessionRepository
	knowledge  *repository.KnowledgeRepository
}

type services struct {
	auth       *service.AuthService
	profile    *service.ProfileService
	curriculum *service.CurriculumService
	dashboard  *service.DashboardService
	session    *service.LessonSessionService
	voice      *service.VoiceService
}

type controllers struct {
	auth       *controller.AuthController
	profile    *controller.ProfileController
	curriculum *controller.CurriculumController
	dashboard  *controller.DashboardController
	session    *controller.SessionController
	voice      *controller.VoiceController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		profile:    repository.NewProfileRepository(db),
		curriculum: repository.NewCurriculumRepository(db),
		session:    repository.NewSessionRepository(db),
		knowledge:  repository.NewKnowledgeRepository(db),
	}
}

func (a *App) initServices(ctx context.Context, repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	intro := service.NewIntroCache(rdb)
	provider := service.NewAIService(cfg.AI)
	storage := service.NewStorageProvider(ctx, &cfg.Storage)

	return &services{
		auth:       service.NewAuthService(repos.user, cfg),
		profile:    service.NewProfileService(repos.profile, intro),
		curriculum: service.NewCurriculumService(repos.user, repos.profile, repos.curriculum, provider, intro),
		dashboard:  service.NewDashboardService(repos.user, repos.curriculum, repos.session, repos.knowledge, cfg.Dashboard),
		session:    service.NewLessonSessionService(repos.curriculum, repos.session, repos.knowledge),
		voice:      service.NewVoiceService(cfg.Voice, storage),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		profile:    controller.NewProfileController(s.profile),
		curriculum: controller.NewCurriculumController(s.curriculum),
		dashboard:  controller.NewDashboardController(s.dashboard),
		session:    controller.NewSessionController(s.session),
		voice:      controller.NewVoiceController(s.voice),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(monitoring.MetricsMiddleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, window)
	router.Use(a.limiter.Middleware())
}

// jwtSecret 配置热加载后读取最新密钥
func (a *App) jwtSecret() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Config.JWT.Secret
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	if cfg.JWT.Secret != "" {
		a.Config.JWT.Secret = cfg.JWT.Secret
	}
	a.Config.Server.Mode = cfg.Server.Mode
	a.mu.Unlock()

	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(serviceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	// 监控初始化
	monitoring.Init()

	repos := app.initRepositories(db)
	services := app.initServices(ctx, repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
		logger.Log.Info("Log level updated", zap.String("level", logger.Level().String()))
	})

	return app, nil
}

// Run 阻塞直到 ctx 取消，然后优雅关闭
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go a.limiter.Cleanup(ctx)

	if a.Config.ConfigFile != "" {
		if err := configwatcher.Watch(ctx, a.Config.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.close(shutdownCtx)
	logger.Log.Info("Server exiting")
	return nil
}

func (a *App) close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
