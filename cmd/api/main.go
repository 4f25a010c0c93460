package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/labstock-api/internal/application/alert"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/cache"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/labstock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/labstock-api/internal/interfaces/http"
	"github.com/jhoicas/labstock-api/pkg/config"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// storage repositorios del backend elegido con STORAGE_DRIVER.
type storage struct {
	tx       inventory.TxRunner
	articles repository.ArticleRepository
	stocks   repository.StockRepository
	lots     repository.StockLotRepository
	movs     repository.StockMovementRepository
	alerts   repository.StockAlertRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas protegidas responderán 401")
	}

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	var guard inventory.IdempotencyGuard
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		redisGuard := cache.NewRedisIdempotencyGuard(client, cfg.Redis.IdempotencyTTL)
		defer redisGuard.Close()
		guard = redisGuard
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: reserva de eventos en memoria (solo una instancia)")
		guard = cache.NewInMemoryIdempotencyGuard(cfg.Redis.IdempotencyTTL)
	}

	evaluator := alert.NewEvaluatorUseCase(st.stocks, st.lots, st.articles, st.alerts, cfg.Alerts.DefaultLeadDays, log)
	var observer inventory.StockObserver
	if cfg.Alerts.EvaluateInline {
		observer = alert.NewInlineObserver(evaluator, log)
	}

	consumeUC := inventory.NewConsumeUseCase(st.tx, st.articles, guard, observer, log)
	replenishUC := inventory.NewReplenishUseCase(st.tx, st.articles, observer)
	reverseUC := inventory.NewReverseUseCase(st.tx, st.articles, guard, observer, log)
	stockUC := inventory.NewStockUseCase(st.tx, st.articles, st.stocks, st.lots, st.movs, observer)
	alertUC := alert.NewAlertUseCase(st.alerts, st.stocks, st.lots, st.articles)

	scheduler := alert.NewScheduler(evaluator, st.stocks, cfg.Alerts.Interval, cfg.Alerts.Concurrency, log)
	schedCtx, stopSched := context.WithCancel(ctx)
	scheduler.Start(schedCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LabStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Consume:   consumeUC,
		Replenish: replenishUC,
		Reverse:   reverseUC,
		Stock:     stockUC,
		Evaluator: evaluator,
		Alerts:    alertUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	stopSched()
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			tx:       memory.NewTxRunner(store),
			articles: memory.NewArticleRepository(store),
			stocks:   memory.NewStockRepository(store),
			lots:     memory.NewStockLotRepository(store),
			movs:     memory.NewStockMovementRepository(store),
			alerts:   memory.NewStockAlertRepository(store),
			close:    func() {},
		}, nil
	}

	if cfg.Storage.AutoMigrate {
		mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		err = mg.Up()
		_ = mg.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:       postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		articles: postgres.NewArticleRepository(pool),
		stocks:   postgres.NewStockRepository(pool),
		lots:     postgres.NewStockLotRepository(pool),
		movs:     postgres.NewStockMovementRepository(pool),
		alerts:   postgres.NewStockAlertRepository(pool),
		close:    pool.Close,
	}, nil
}
