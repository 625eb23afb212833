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
	_ "github.com/jhoicas/Kardex-api/docs"
	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/registry"
	"github.com/jhoicas/Kardex-api/internal/application/txretry"
	"github.com/jhoicas/Kardex-api/internal/application/warehouse"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// @title                      Kardex API
// @version                    1.0
// @description                Libro de inventario y motor de asignación por lotes.
// @host                       localhost:8080
// @BasePath                   /
//
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
// @description                Formato: "Bearer <token>"
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	invRepo := postgres.NewInventoryRecordRepository(pool)
	adjRepo := postgres.NewLotAdjustmentRepository(pool)
	logRepo := postgres.NewActivityLogRepository(pool)
	batchRepo := postgres.NewBatchRegistryRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	adjTypeRepo := postgres.NewAdjustmentTypeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	recorder := ledger.NewRecorder()
	retry := txretry.Policy{
		MaxAttempts: cfg.Tx.MaxRetries,
		Backoff:     time.Duration(cfg.Tx.RetryBackoffMS) * time.Millisecond,
	}

	storeUC := inventory.NewStoreUseCase(invRepo, batchRepo, warehouseRepo)
	queryUC := inventory.NewQueryUseCase(invRepo, adjRepo, logRepo, recorder)
	adjustUC := inventory.NewAdjustUseCase(txRunner, adjTypeRepo, recorder, retry, log)
	transferUC := inventory.NewTransferUseCase(txRunner, recorder, retry, log)
	allocationUC := allocation.New(txRunner, recorder, retry, log)
	registryUC := registry.New(batchRepo)
	warehouseUC := warehouse.New(warehouseRepo)

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
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Store:      storeUC,
		Query:      queryUC,
		Adjust:     adjustUC,
		Transfer:   transferUC,
		Allocation: allocationUC,
		Registry:   registryUC,
		Warehouse:  warehouseUC,
		Log:        log,
		JWTSecret:  cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
