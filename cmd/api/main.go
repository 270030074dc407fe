package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	authjwt "health-record-sharing/internal/adapters/auth/jwt"
	blobminio "health-record-sharing/internal/adapters/blob/minio"
	"health-record-sharing/internal/adapters/notify/rabbitmq"
	pg "health-record-sharing/internal/adapters/storage/postgres"
	"health-record-sharing/internal/config"
	"health-record-sharing/internal/platform/logger"
	"health-record-sharing/internal/router"

	"github.com/spf13/pflag"
)

// @title Health Record Sharing API
// @version 1.0
// @description Pacientes suben documentos y aprueban pedidos de acceso de médicos.
// @BasePath /
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("api", pflag.ContinueOnError)
	addr := flags.String("addr", "", "listen address (overrides PORT)")
	envFile := flags.String("env-file", ".env", "optional dotenv file")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.App.Addr = *addr
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Logger:           log,
		UploadsDir:       cfg.Uploads.Dir,
		UploadsURLPrefix: cfg.Uploads.URLPrefix,
		MaxUploadBytes:   cfg.HTTP.MaxUploadMB << 20,
		MaxRequests:      cfg.HTTP.MaxRequests,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
	}

	// Postgres (si no hay DSN: in-memory)
	if cfg.Postgres.DSN != "" {
		db, err := openPostgres(ctx, cfg.Postgres, log)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.DB = db
		log.Info("using postgres storage", nil)
	} else {
		log.Info("using in-memory storage", nil)
	}

	// MinIO (si no hay endpoint: disco local)
	if cfg.Minio.Enabled() {
		store, err := blobminio.New(ctx, blobminio.Config{
			Endpoint:      cfg.Minio.Endpoint,
			AccessKey:     cfg.Minio.AccessKey,
			SecretKey:     cfg.Minio.SecretKey,
			Bucket:        cfg.Minio.Bucket,
			UseSSL:        cfg.Minio.UseSSL,
			PublicBaseURL: cfg.Minio.PublicBaseURL,
		})
		if err != nil {
			return err
		}
		opts.Blob = store
		log.Info("using minio blob store", map[string]any{"bucket": cfg.Minio.Bucket})
	}

	// RabbitMQ (opcional)
	if cfg.RabbitMQ.Enabled() {
		pub, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.App.Name)
		if err != nil {
			return err
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("rabbitmq close", map[string]any{"err": err})
			}
		}()
		opts.Publisher = pub
		log.Info("publishing access request events", map[string]any{"exchange": cfg.RabbitMQ.Exchange})
	}

	// JWT (opcional): sin secreto se aceptan los headers de dev
	if cfg.JWT.Secret != "" {
		v := authjwt.NewVerifier(cfg.JWT.Secret)
		opts.AuthVerifier = v
		opts.TokenIssuer = v
	}

	handler, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.App.Addr, "env": cfg.App.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down, waiting for pending requests", map[string]any{"timeout": cfg.App.ShutdownTimeout.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exiting", nil)
	return nil
}

func openPostgres(ctx context.Context, cfg config.Postgres, log logger.Logger) (*sql.DB, error) {
	db, err := pg.Open(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		n, err := pg.Migrate(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("applied migrations", map[string]any{"count": n})
	}
	return db, nil
}
