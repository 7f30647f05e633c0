// Package server wires the gallery application together: database and
// migrations, the blob store backend, services and the HTTP API. It runs the
// HTTP server until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/auth"
	"github.com/dmitrijs2005/photogallery/internal/server/config"
	"github.com/dmitrijs2005/photogallery/internal/server/httpapi"
	"github.com/dmitrijs2005/photogallery/internal/server/objectstore"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	logOutput      io.Writer = os.Stdout
	openDB                   = repomanager.OpenDB
	newRepoManager           = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

var newS3Backend = func(ctx context.Context, c objectstore.S3Config) (objectstore.Backend, error) {
	b, err := objectstore.NewS3Backend(ctx, c)
	if err != nil {
		return nil, err
	}
	return b, nil
}

var newMinioBackend = func(c objectstore.S3Config) (bucketBackend, error) {
	b, err := objectstore.NewMinioBackend(c)
	if err != nil {
		return nil, err
	}
	return b, nil
}

type bucketBackend interface {
	objectstore.Backend
	EnsureBucket(ctx context.Context) (bool, error)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(logOutput, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	backend, err := newBackend(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observer, err := objectstore.NewPrometheusObserver("", reg)
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	store := objectstore.New(backend, objectstore.Location{
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3BaseEndpoint,
		KeyPrefix:     c.S3KeyPrefix,
		PublicBaseURL: c.S3PublicBaseURL,
	}, objectstore.WithLogger(logger), objectstore.WithObserver(observer))

	tokens := auth.NewManager(c.SecretKey)
	as := services.NewAssetService(db, rm, store, logger)
	us := services.NewUserService(db, rm, tokens, as, logger)

	srv := httpapi.NewServer(httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		MaxBodyBytes:    c.MaxUploadBytes,
		ShutdownTimeout: c.ShutdownTimeout,
		Gatherer:        reg,
	}, logger, us, as, tokens)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func newBackend(ctx context.Context, c *config.Config, logger logging.Logger) (objectstore.Backend, error) {
	sc := objectstore.S3Config{
		Region:    c.S3Region,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
		Endpoint:  c.S3BaseEndpoint,
	}

	switch c.StorageDriver {
	case config.StorageDriverS3:
		return newS3Backend(ctx, sc)
	case config.StorageDriverMinio:
		b, err := newMinioBackend(sc)
		if err != nil {
			return nil, err
		}
		created, err := b.EnsureBucket(ctx)
		if err != nil {
			return nil, err
		}
		if created {
			logger.Info(ctx, "bucket created", "bucket", c.S3Bucket)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
