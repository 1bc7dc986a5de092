package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "taskhub/docs"
	"taskhub/internal/cache"
	"taskhub/internal/config"
	"taskhub/internal/handlers"
	"taskhub/internal/middleware"
	"taskhub/internal/pdf"
	"taskhub/internal/repositories"
	"taskhub/internal/routes"
	"taskhub/internal/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	db     *sqlx.DB
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	// === DB ===
	db, err := OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db

	if cfg.Database.AutoMigrate {
		if err := repositories.Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	// === Redis (опционально) ===
	if cfg.Redis.Addr != "" {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.redis = rdb
	} else {
		log.Printf("[app] redis not configured, logout will not revoke access tokens")
	}

	schema := repositories.NewSchema()
	if err := schema.Validate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	a.router = a.newRouter(schema)
	return a, nil
}

// newReportGenerator: без шрифта используется встроенный Helvetica
func newReportGenerator(cfg config.PDFConfig) *pdf.ReportGenerator {
	if cfg.FontPath == "" {
		log.Printf("[app] pdf.font_path not set, exports limited to Latin-1")
	}
	return pdf.NewReportGenerator(cfg.FontPath)
}

func OpenDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return db, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (a *App) newNotifier(users repositories.UserRepository) services.Notifier {
	if a.cfg.Telegram.BotToken == "" {
		return services.NopNotifier{}
	}
	bot, err := tgbotapi.NewBotAPI(a.cfg.Telegram.BotToken)
	if err != nil {
		log.Printf("[tg][init][err] %v, telegram notifications disabled", err)
		return services.NopNotifier{}
	}
	log.Printf("[tg][init][ok] bot=@%s", bot.Self.UserName)
	return services.NewTelegramNotifier(bot, users)
}

func (a *App) newRouter(schema *repositories.Schema) *gin.Engine {
	cfg := a.cfg

	// === Repos ===
	store := repositories.NewStore(a.db, schema)
	txm := repositories.NewTxManager(a.db, schema)

	// === Services ===
	authService := services.NewAuthService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.Issuer)
	var emailService services.EmailService
	if cfg.Email.Enabled() {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.FrontendURL,
		)
	}
	notifier := a.newNotifier(store.Users)

	userService := services.NewUserService(store, authService, emailService)
	taskService := services.NewTaskService(store, txm, notifier)
	shareService := services.NewShareService(store, txm, notifier)
	commentService := services.NewCommentService(store, txm, notifier)
	notificationService := services.NewNotificationService(store.Notifications)
	resetService := services.NewPasswordResetService(store, txm, userService, emailService)

	var denylist *cache.TokenDenylist
	if a.redis != nil {
		denylist = cache.NewTokenDenylist(a.redis)
	}

	reports := newReportGenerator(cfg.PDF)

	// === Handlers ===
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(userService, authService, resetService, denylist, cfg.JWT.RefreshTTL),
		Users:         handlers.NewUserHandler(userService),
		Tasks:         handlers.NewTaskHandler(taskService, userService, reports),
		Shares:        handlers.NewSharedTaskHandler(shareService),
		Comments:      handlers.NewCommentHandler(commentService, userService),
		Notifications: handlers.NewNotificationHandler(notificationService),
	}

	// === Gin ===
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))

	router.GET("/healthz", healthHandler(a.db))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, h, middleware.AuthMiddleware(authService, denylist))
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func healthHandler(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен на %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Ошибка закрытия Redis: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}
}
