package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	redisadapter "github.com/ericfisherdev/reviewledger/internal/adapter/driven/redis"
	"github.com/ericfisherdev/reviewledger/internal/adapter/driven/sarif"
	sqliteadapter "github.com/ericfisherdev/reviewledger/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/reviewledger/internal/adapter/driving/http"
	"github.com/ericfisherdev/reviewledger/internal/application"
	"github.com/ericfisherdev/reviewledger/internal/config"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
	"github.com/ericfisherdev/reviewledger/internal/logger"
	"github.com/ericfisherdev/reviewledger/internal/telemetry"
)

const serviceName = "reviewledger"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stdout)
	slog.SetDefault(log)
	log.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"redis_enabled", cfg.HasRedis(),
		"max_retries", cfg.MaxRetries,
		"lock_timeout", cfg.LockTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracing. Spans are only recorded when trace logging is enabled.
	if cfg.TraceLog {
		tp := telemetry.NewTracerProvider(serviceName, log)
		otel.SetTracerProvider(tp)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error("error shutting down tracer provider", "error", err)
			}
		}()
	}

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database opened", "path", db.Path())

	// 5. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	log.Info("migrations complete")

	// 6. Wire adapters.
	findingStore := sqliteadapter.NewFindingRepo(db)
	statusRegistry := sqliteadapter.NewStatusRepo(db)
	commentLedger := sqliteadapter.NewCommentRepo(db)

	// 6b. Change events are optional.
	var publisher driven.ChangePublisher
	if cfg.HasRedis() {
		pub, err := redisadapter.NewPublisher(ctx, redisadapter.Options{
			URL:     cfg.RedisURL,
			Channel: cfg.RedisChannel,
		})
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := pub.Close(); closeErr != nil {
				log.Error("error closing redis publisher", "error", closeErr)
			}
		}()
		publisher = pub
		log.Info("publishing review changes", "channel", pub.Channel())
	}

	// 7. Create services.
	reviewSvc := application.NewReviewStatusService(
		findingStore,
		statusRegistry,
		commentLedger,
		publisher,
		application.ReviewStatusConfig{
			MaxRetries:  cfg.MaxRetries,
			LockTimeout: cfg.LockTimeout,
			Tracer:      otel.Tracer(serviceName),
		},
		log,
	)
	importSvc := application.NewImportService(sarif.NewParser(), findingStore, log)

	// 8. Create HTTP handler and start the server.
	apiHandler := httphandler.NewHandler(reviewSvc, importSvc, cfg.AuthorHeader, log)
	handler := otelhttp.NewHandler(httphandler.NewServeMux(apiHandler, log), serviceName)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 9. Wait for shutdown signal or server failure.
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}
