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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/fulfillment"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/application/requests"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/suministros-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/suministros-api/internal/infrastructure/pdf"
	"github.com/jhoicas/suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/suministros-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/suministros-api/internal/interfaces/http"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// repositories agrupa los adaptadores del almacén elegido.
type repositories struct {
	products   repository.ProductRepository
	requests   repository.RequestRepository
	movements  repository.StockMovementRepository
	activities repository.ActivityRepository
	close      func()
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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén")
	}
	defer repos.close()

	if cfg.App.SeedDemoData {
		n, err := seed.Apply(ctx, repos.products, seed.DemoProducts())
		if err != nil {
			log.Fatal().Err(err).Msg("cargar catálogo de demostración")
		}
		log.Info().Int("created", n).Msg("catálogo de demostración cargado")
	}

	notifier, closeNotifier := openNotifier(ctx, cfg, log)
	defer closeNotifier()

	maxRetries := cfg.Ledger.MaxRetries
	activityUC := usecase.NewActivityUseCase(repos.activities)
	productUC := usecase.NewProductUseCase(repos.products, activityUC, maxRetries)
	ledger := inventory.NewLedgerUseCase(repos.products, repos.movements, activityUC, notifier, maxRetries)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.products)
	requestUC := requests.NewUseCase(repos.requests, activityUC, notifier, maxRetries)
	deliverUC := fulfillment.NewDeliverUseCase(requestUC, ledger, repos.products, fulfillment.Options{
		Policy:        fulfillment.LinePolicy(cfg.Fulfillment.LinePolicy),
		LeaseDuration: cfg.Fulfillment.LeaseDuration,
	})

	// PDF: albarán de entrega
	noteGenerator := infrapdf.NewMarotoDeliveryNoteGenerator(cfg.App.Name)
	deliveryNoteUC := fulfillment.NewDeliveryNoteUseCase(requestUC, ledger, repos.products, noteGenerator)
	dashboardUC := appanalytics.NewDashboardUseCase(repos.products, repos.requests, repos.activities)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Suministros API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:   cfg.App.Name,
		ProductUC:     productUC,
		ActivityUC:    activityUC,
		Ledger:        ledger,
		Replenishment: replenishmentUC,
		RequestUC:     requestUC,
		Deliver:       deliverUC,
		DeliveryNote:  deliveryNoteUC,
		DashboardUC:   dashboardUC,
		JWTSecret:     cfg.JWT.Secret,
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

func openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		return &repositories{
			products:   memory.NewProductRepository(store),
			requests:   memory.NewRequestRepository(store),
			movements:  memory.NewStockMovementRepository(store),
			activities: memory.NewActivityRepository(store),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &repositories{
		products:   postgres.NewProductRepository(pool),
		requests:   postgres.NewRequestRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		activities: postgres.NewActivityRepository(pool),
		close:      pool.Close,
	}, nil
}

// openNotifier usa la cola Redis si REDIS_URL está definido. Si Redis no responde se sigue
// sin notificaciones: son de mejor esfuerzo.
func openNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.Notifier, func()) {
	if cfg.Notify.RedisURL == "" {
		return notify.NoopNotifier{}, func() {}
	}
	rdb, err := notify.NewRedisClient(ctx, cfg.Notify.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, notificaciones deshabilitadas")
		return notify.NoopNotifier{}, func() {}
	}
	log.Info().Str("queue", cfg.Notify.Queue).Msg("notificaciones vía redis")
	return notify.NewRedisNotifier(rdb, cfg.Notify.Queue), func() { _ = rdb.Close() }
}
