// Package server wires the gateway together: it owns the database pool, the
// object storage client and the optional Redis client, applies migrations,
// runs the HTTP server and tears everything down on shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/artifacts"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
	"github.com/dmitrijs2005/agritrack/internal/server/config"
	"github.com/dmitrijs2005/agritrack/internal/server/forecast"
	"github.com/dmitrijs2005/agritrack/internal/server/httpapi"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/agritrack/internal/server/services"
	"github.com/redis/go-redis/v9"
)

const purgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	revocations revocations.Repository
	server      *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, err
	}

	store, err := artifacts.NewS3Store(ctx, artifacts.Options{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	if c.RedisAddr != "" {
		client, err := revocations.NewRedisClient(ctx, c.RedisAddr)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		app.revocations = revocations.NewRedisRepository(client)
	} else {
		app.revocations = rm.Revocations(db)
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	hasher := auth.NewBcryptHasher(c.BcryptCost, c.HashConcurrency)

	us := services.NewUserService(db, rm, hasher, tokens, app.revocations, logger)
	ps := services.NewProductService(db, rm, store, c.MaxUploadSize, logger)
	fs := services.NewForecastService(db, rm, forecast.NewClient(c.PredictionBaseURL, c.PredictionTimeout), logger)

	gate := httpapi.NewGate(tokens, app.revocations, logger)
	app.server = httpapi.NewServer(httpapi.Options{
		Address:        c.EndpointAddrHTTP,
		AllowedOrigins: c.CORSAllowedOrigins,
		MaxUploadSize:  c.MaxUploadSize,
		WriteTimeout:   c.PredictionTimeout + 30*time.Second,
		AccessLog:      os.Stdout,
	}, gate, us, ps, fs, logger)

	return app, nil
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRevocations drops expired revocations until ctx ends.
func (app *App) purgeRevocations(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.purgeOnce(ctx)
		}
	}
}

func (app *App) purgeOnce(ctx context.Context) {
	n, err := app.revocations.PurgeExpired(ctx, time.Now())
	if err != nil {
		app.logger.Warn(ctx, "revocation purge failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Debug(ctx, "revocations purged", "count", n)
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeRevocations(ctx, purgeInterval)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close failed", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close failed", "error", err)
		}
	}
}
