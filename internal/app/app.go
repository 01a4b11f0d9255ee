package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tgbot_backend/internal/bot"
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/controller"
	"tgbot_backend/internal/repository"
	"tgbot_backend/internal/service"
	"tgbot_backend/pkg/database"
	"tgbot_backend/pkg/logger"
	"tgbot_backend/pkg/monitoring"
	"tgbot_backend/pkg/security"
	"tgbot_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	Bot       *bot.Bot
	messenger *bot.TelegramMessenger
	tp        interface{ Shutdown(context.Context) error }
}

type repositories struct {
	user    *repository.UserRepository
	points  *repository.PointsRepository
	message *repository.MessageRepository
	group   *repository.GroupRepository
}

type services struct {
	auth   *service.AuthService
	ledger *service.LedgerService
	stats  *service.StatsService
	user   *service.UserService
}

type controllers struct {
	auth    *controller.AuthController
	user    *controller.UserController
	points  *controller.PointsController
	message *controller.MessageController
	stats   *controller.StatsController
	bot     *controller.BotController
	health  *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		points:  repository.NewPointsRepository(db, rdb),
		message: repository.NewMessageRepository(db),
		group:   repository.NewGroupRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	ledger := service.NewLedgerService(repos.user, repos.points, cfg.Checkin)
	return &services{
		auth:   service.NewAuthService(cfg),
		ledger: ledger,
		stats:  service.NewStatsService(repos.user, repos.message, repos.group),
		user:   service.NewUserService(repos.user, repos.message, ledger),
	}
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		user:    controller.NewUserController(s.user),
		points:  controller.NewPointsController(repos.points),
		message: controller.NewMessageController(repos.message, repos.group),
		stats:   controller.NewStatsController(s.stats),
		bot:     controller.NewBotController(a.messenger),
		health:  controller.NewHealthController(db),
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

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	messenger, err := bot.NewTelegramMessenger(cfg.Bot.Token)
	if err != nil {
		logger.Log.Fatal("Failed to connect to telegram", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		messenger: messenger,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)

	scheduler := bot.NewScheduler(messenger, cfg.Bot.DeleteWorkers)
	app.Bot = bot.New(cfg, bot.Deps{
		Messenger:   messenger,
		Scheduler:   scheduler,
		Ledger:      services.ledger,
		Stats:       services.stats,
		Translator:  bot.NewAITranslator(cfg.AI),
		Publisher:   bot.NewTelegraphPublisher(),
		UserRepo:    repos.user,
		PointsRepo:  repos.points,
		MessageRepo: repos.message,
		GroupRepo:   repos.group,
	})

	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("tgbot-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tp = tp
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

// ApplyConfig 配置热更新回调，转发给机器人
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Bot.ApplyConfig(cfg)
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

	go a.Bot.Run(a.messenger.Updates(a.Config.Bot.UpdateTimeout))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 先停长轮询，等在途更新处理完再停删除调度器
	a.messenger.StopUpdates()
	a.Bot.Stop()

	if a.tp != nil {
		if err := a.tp.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
