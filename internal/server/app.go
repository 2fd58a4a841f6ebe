// Package server wires the taskkeeper server together: storage, the refresh
// rotation registry, services, and the HTTP and gRPC transports. It handles
// graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/taskkeeper/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	closers     []func() error
	verifier    *auth.Verifier
	userService *services.UserService
	todoService *services.TodoService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	rm, err := app.openRepositories(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		app.Close()
		return nil, err
	}

	registry, err := app.openRegistry(ctx, rm)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("rotation registry init error: %w", err)
	}

	tokens, err := auth.NewTokenService(c.AccessSecret, c.RefreshSecret, c.AccessTTL, c.RefreshTTL)
	if err != nil {
		app.Close()
		return nil, err
	}

	presigner, err := storage.NewS3Presigner(ctx, storage.S3Options{
		AccessKey: c.S3User,
		SecretKey: c.S3Password,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		Endpoint:  c.S3Endpoint,
		TTL:       c.PresignTTL,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	app.verifier = auth.NewVerifier(tokens)
	app.userService = services.NewUserService(rm.Users(), registry, auth.NewPasswordHasher(c.BcryptCost), tokens, logger.With("module", "users"))
	app.todoService = services.NewTodoService(rm.Todos(), presigner, logger.With("module", "todos"))

	return app, nil
}

func (app *App) openRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	switch app.config.StorageDriver {
	case config.DriverMemory:
		return repomanager.NewMemoryRepositoryManager(memory.NewStore()), nil
	case config.DriverPostgres:
		db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		return repomanager.NewPostgresRepositoryManager(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", app.config.StorageDriver)
	}
}

// openRegistry returns nil when rotation is disabled.
func (app *App) openRegistry(ctx context.Context, rm repomanager.RepositoryManager) (refreshtokens.Repository, error) {
	switch app.config.RotationRegistry {
	case config.RegistryNone, "":
		return nil, nil
	case config.RegistryPostgres:
		return rm.RefreshTokens(), nil
	case config.RegistryMemory:
		if app.config.StorageDriver == config.DriverMemory {
			return rm.RefreshTokens(), nil
		}
		return memory.NewStore().RefreshTokens(), nil
	case config.RegistryRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     app.config.RedisAddr,
			Password: app.config.RedisPassword,
			DB:       app.config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		return refreshtokens.NewRedisRepository(client, refreshtokens.DefaultRedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown rotation registry %q", app.config.RotationRegistry)
	}
}

// Close releases the database pool and the redis client.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.userService, app.todoService, app.verifier)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	fa := hs.NewApp(app.logger.With("module", "http"))
	hs.Register(fa, app.verifier, hs.NewAuthHandler(app.userService, app.logger), hs.NewTodoHandler(app.todoService))

	if err := hs.NewServer(app.config.HTTPAddr, fa, app.logger).Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRetiredTokens drops expired rotation records every interval until
// ctx is done.
func (app *App) purgeRetiredTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeRetiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "purge retired refresh tokens", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged retired refresh tokens", "count", n)
			}
		}
	}
}

// Run serves until ctx is cancelled, a signal arrives, or a transport fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.HTTPAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	if app.config.RotationRegistry != config.RegistryNone && app.config.PurgeInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.purgeRetiredTokens(ctx, app.config.PurgeInterval)
		}()
	}

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "close resources", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
