package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"police-dashboard/api"
	"police-dashboard/cache"
	"police-dashboard/config"
	"police-dashboard/database"
	"police-dashboard/logging"
	"police-dashboard/realtime"
)

// App represents the dashboard process
type App struct {
	config *config.Config
	db     *database.Database
	redis  *cache.RedisClient
	repo   *database.StopRepository
	broker *realtime.Broker
	server *api.Server
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start connects to the database, starts the dashboard and blocks until an
// interrupt or a server failure
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")
	dsn := a.config.DSN()
	if err := database.VerifyConnection(ctx, dsn); err != nil {
		fmt.Printf("❌ Error connecting to database: %v\n", err)
		return fmt.Errorf("database connection failed: %w", err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db
	fmt.Println("✅ Database connection successful")

	a.repo = database.NewStopRepository(a.db)
	if err := a.repo.InitSchema(); err != nil {
		a.db.Close()
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	a.redis = cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
		time.Duration(a.config.CacheTTLSeconds)*time.Second,
	)
	if a.redis == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	}

	// 3. Realtime Broker
	a.broker = realtime.NewBroker()
	go a.broker.Run(ctx)

	// 4. Dashboard
	a.server = api.NewServer(a.repo, a.redis, a.broker)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start(a.config.APIPort)
	}()

	return a.gracefulShutdown(cancel, serverErr)
}

// gracefulShutdown waits for an interrupt or a server failure, then releases
// every resource within a timeout
func (a *App) gracefulShutdown(cancel context.CancelFunc, serverErr <-chan error) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var runErr error
	select {
	case <-interrupt:
		fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logging.Error().Err(err).Msg("⚠️  Dashboard server failed")
			runErr = fmt.Errorf("dashboard server: %w", err)
		}
	}

	// stops the broker, which closes open event streams
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("Error stopping dashboard server")
		}

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing database")
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing redis")
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return runErr
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
