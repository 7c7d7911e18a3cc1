package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"library-stats/internal/config"
	apphttp "library-stats/internal/http"
	"library-stats/internal/repository/sqlite"
	"library-stats/internal/seed"
	"library-stats/internal/service"
	"library-stats/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags.String("server-addr", "", "listen address")
	flags.Bool("server-allowreseed", false, "enable POST /api/seed")
	flags.String("database-path", "", "sqlite database file")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	repos := sqlite.NewRepositories(db)
	if err := repos.Init(ctx); err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	seeder := seed.New(repos, seed.Config{
		Books:    cfg.Seed.Books,
		Users:    cfg.Seed.Users,
		MinLoans: cfg.Seed.MinLoans,
		MaxLoans: cfg.Seed.MaxLoans,
		Logger:   logger,
	}, seed.NewRand(cfg.Seed.Random))

	books, err := repos.Books.List(ctx)
	if err != nil {
		logger.Fatalf("list books: %v", err)
	}
	if len(books) == 0 {
		logger.Info("empty database, seeding")
		if _, err := seeder.Seed(ctx, time.Now()); err != nil {
			logger.Fatalf("seed database: %v", err)
		}
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	records := repos.RecordStore()
	catalogService := service.NewCatalogService(records)
	analyticsService := service.NewAnalyticsService(service.AnalyticsConfig{
		TopBorrowers: cfg.Report.TopBorrowers,
		Bucket:       cfg.Storage.Bucket,
		KeyPrefix:    cfg.Storage.KeyPrefix,
		Logger:       logger,
	}, records, storageSvc)

	var reseeder apphttp.Reseeder
	if cfg.Server.AllowReseed {
		reseeder = seeder
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(catalogService, analyticsService, reseeder, nil)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildStorage returns nil when no bucket is configured; archiving is then disabled.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, report archiving disabled")
		return nil, nil
	}

	svc, err := storage.Connect(ctx, storage.ConnectOptions{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return svc, nil
}
