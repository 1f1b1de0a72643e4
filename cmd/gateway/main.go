package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	persistence "github.com/goliatone/go-persistence-bun"
	glog "github.com/goliatone/go-logger/glog"

	gateway "github.com/coconup/nomadpi-services-api"
	"github.com/coconup/nomadpi-services-api/connectors/blinkcameras"
	"github.com/coconup/nomadpi-services-api/connectors/callmebot"
	"github.com/coconup/nomadpi-services-api/core"
	"github.com/coconup/nomadpi-services-api/manifest"
	gatewaymigrations "github.com/coconup/nomadpi-services-api/migrations"
	"github.com/coconup/nomadpi-services-api/security"
	"github.com/coconup/nomadpi-services-api/server"
	sqlstore "github.com/coconup/nomadpi-services-api/store/sql"
	"github.com/coconup/nomadpi-services-api/transport"
	credvault "github.com/coconup/nomadpi-services-api/vault"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("gateway: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := core.ResolveConfig(ctx, core.EnvRawConfigLoader{Lookup: os.LookupEnv}, core.Config{})
	if err != nil {
		return err
	}

	_, logger := glog.Resolve(cfg.ServiceName, nil, nil)
	logger = glog.Ensure(logger)

	client, err := openPersistence(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("closing database", "error", closeErr)
		}
	}()

	servicesFS, err := gateway.GetServicesFS()
	if err != nil {
		return fmt.Errorf("load service manifests: %w", err)
	}
	manifests, err := manifest.NewStore(servicesFS, manifest.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := failOnInvalidManifests(ctx, manifests, logger); err != nil {
		return err
	}

	secrets, err := security.NewAppKeySecretProviderFromString(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("build secret provider: %w", err)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return err
	}

	outbound := transport.NewOutboundHTTPClient(nil)

	vaultOpts := []credvault.Option{credvault.WithLogger(logger)}
	if hook := credvault.NewWebhookNotifier(outbound, cfg.RefreshHook, credvault.WithWebhookLogger(logger)); hook != nil {
		vaultOpts = append(vaultOpts, credvault.WithRefreshNotifier(hook))
	}
	vault, err := credvault.New(factory.CredentialStore(), secrets, vaultOpts...)
	if err != nil {
		return err
	}

	registry := core.NewConnectorRegistry()
	blink, err := blinkcameras.New(vault, manifests, outbound)
	if err != nil {
		return err
	}
	bot, err := callmebot.New(vault, manifests, outbound)
	if err != nil {
		return err
	}
	for _, connector := range []core.Connector{blink, bot} {
		if err := registry.Register(connector); err != nil {
			return err
		}
	}
	if err := registry.ValidateAgainst(ctx, manifests); err != nil {
		return err
	}

	dispatcher, err := core.NewDispatcher(manifests, registry, core.WithDispatcherLogger(logger))
	if err != nil {
		return err
	}

	srv, err := server.New(cfg.HTTP, vault, manifests, dispatcher, server.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("gateway starting",
		"service", cfg.ServiceName,
		"driver", cfg.Database.Driver,
		"connectors", len(registry.List()),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("gateway stopped")
	return nil
}

func openPersistence(ctx context.Context, cfg core.Config) (*persistence.Client, error) {
	var dialect schema.Dialect
	switch cfg.Database.Driver {
	case "sqlite3":
		dialect = sqlitedialect.New()
	case "postgres":
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	sqlDB, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.Driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{cfg: cfg}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("new persistence client: %w", err)
	}

	migrationsDialect := gatewaymigrations.DialectSQLite
	if cfg.Database.Driver == "postgres" {
		migrationsDialect = gatewaymigrations.DialectPostgres
	}
	_, err = gatewaymigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != migrationsDialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, gatewaymigrations.WithValidationTargets(migrationsDialect))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return client, nil
}

// failOnInvalidManifests scans every bundled manifest and refuses to start if
// any of them is malformed. Each failure is reported individually before the
// aggregate error aborts startup.
func failOnInvalidManifests(ctx context.Context, manifests *manifest.Store, logger core.Logger) error {
	results, err := manifests.ValidateAll(ctx)
	invalid := 0
	for _, result := range results {
		if result.Valid() {
			continue
		}
		invalid++
		logger.Error("invalid service manifest",
			"service_id", result.ServiceID,
			"error", result.Err.Error(),
		)
	}
	if err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d invalid service manifest(s)", invalid)
	}
	return nil
}

type persistenceConfig struct {
	cfg core.Config
}

func (c persistenceConfig) GetDebug() bool {
	return false
}

func (c persistenceConfig) GetDriver() string {
	return c.cfg.Database.Driver
}

func (c persistenceConfig) GetServer() string {
	return c.cfg.Database.DSN
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return c.cfg.ServiceName
}
