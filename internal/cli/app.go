package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
	"github.com/yuzvak/storefront-cart/internal/application/ports"
	"github.com/yuzvak/storefront-cart/internal/application/sessions"
	"github.com/yuzvak/storefront-cart/internal/application/use_cases"
	"github.com/yuzvak/storefront-cart/internal/config"
	"github.com/yuzvak/storefront-cart/internal/domain/cart"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/api"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/handlers"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/persistence/memory"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/persistence/postgres"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/persistence/redis"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/scheduler"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// App is the wired object graph every command runs against.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Catalog  ports.Catalog
	Admin    ports.InventoryAdmin
	Carts    *commands.CartHandler
	Checkout *commands.CheckoutHandler

	// Checks and Janitor are only used by serve.
	Checks    []handlers.DependencyCheck
	Janitor   *scheduler.SnapshotJanitor
	DBMetrics *monitoring.DBMetricsCollector

	closers []func() error
}

// AppFactory builds an App for a loaded config.
type AppFactory func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error)

// NewApp connects the configured persistence provider and the sweets API.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	provider, err := app.openProvider(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	client := api.NewClient(cfg.API, log)
	if err := app.wire(provider, client, client, client); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// NewAppWith wires an App over caller-supplied ports.
func NewAppWith(cfg *config.Config, log *logger.Logger, provider ports.PersistenceProvider, purchases ports.PurchaseService, catalog ports.Catalog, admin ports.InventoryAdmin) (*App, error) {
	app := &App{Config: cfg, Log: log}
	if err := app.wire(provider, purchases, catalog, admin); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) wire(provider ports.PersistenceProvider, purchases ports.PurchaseService, catalog ports.Catalog, admin ports.InventoryAdmin) error {
	policy, err := cart.ParseClearPolicy(a.Config.Checkout.ClearPolicy)
	if err != nil {
		return err
	}

	registry := sessions.NewRegistry(provider, a.Config.Persistence.KeyPrefix, a.Log)
	checkout := use_cases.NewCheckoutUseCase(purchases, a.Log,
		use_cases.WithClearPolicy(policy),
		use_cases.WithUnitTimeout(a.Config.API.UnitTimeout.Std()),
	)

	a.Catalog = catalog
	a.Admin = admin
	a.Carts = commands.NewCartHandler(registry, a.Log)
	a.Checkout = commands.NewCheckoutHandler(registry, checkout, a.Log)

	return nil
}

func (a *App) openProvider(ctx context.Context) (ports.PersistenceProvider, error) {
	cfg := a.Config

	switch cfg.Persistence.Driver {
	case config.PersistenceRedis:
		conn, err := redis.NewConnection(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		a.Checks = append(a.Checks, handlers.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return conn.GetClient().Ping(ctx).Err() },
		})

		return redis.NewSnapshotStore(conn, cfg.Persistence.TTL.Std(), a.Log), nil

	case config.PersistencePostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)

		if err := postgres.RunMigrations(ctx, conn.GetDB(), cfg.Database.MigrationsPath, a.Log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		a.Checks = append(a.Checks, handlers.DependencyCheck{
			Name: "database",
			Ping: conn.GetDB().PingContext,
		})
		a.DBMetrics = monitoring.NewDBMetricsCollector(conn.GetDB())

		repo := postgres.NewSnapshotRepository(conn, cfg.Persistence.TTL.Std(), a.Log)
		if cfg.Persistence.TTL.Std() > 0 {
			a.Janitor = scheduler.NewSnapshotJanitor(repo, a.Log, time.Hour)
		}
		return repo, nil

	default:
		a.Log.Warn("Using in-memory cart persistence, carts are lost on exit")
		return memory.NewSnapshotStore(), nil
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}
