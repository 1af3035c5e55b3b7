package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/acms-stock/internal/application/stock"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/acms-stock/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/acms-stock/internal/interfaces/http"
	"github.com/jhoicas/acms-stock/pkg/config"
	"github.com/jhoicas/acms-stock/pkg/logger"
)

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
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		itemRepo repository.StockItemRepository
		movRepo  repository.StockMovementRepository
		catRepo  repository.CategoryRepository
		locRepo  repository.LocationRepository
		txRunner stock.TxRunner
	)

	switch cfg.DB.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		itemRepo = postgres.NewStockItemRepository(pool)
		movRepo = postgres.NewStockMovementRepository(pool)
		catRepo = postgres.NewCategoryRepository(pool)
		locRepo = postgres.NewLocationRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DB.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("apertura de SQLite")
		}
		defer db.Close()
		itemRepo = sqlite.NewStockItemRepository(db)
		movRepo = sqlite.NewStockMovementRepository(db)
		catRepo = sqlite.NewCategoryRepository(db)
		locRepo = sqlite.NewLocationRepository(db)
		txRunner = sqlite.NewTxRunner(db)
	}

	itemUC := stock.NewItemUseCase(itemRepo, catRepo, locRepo)
	registerMovementUC := stock.NewRegisterMovementUseCase(txRunner)
	reportUC := stock.NewReportUseCase(movRepo, itemRepo)
	catalogUC := stock.NewCatalogUseCase(catRepo, locRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:           itemUC,
		RegisterMovement: registerMovementUC,
		ReportUC:         reportUC,
		CatalogUC:        catalogUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	srvLog := log.Component("http")
	go func() {
		srvLog.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			srvLog.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		srvLog.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
