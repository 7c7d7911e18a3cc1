package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"library-stats/internal/config"
	"library-stats/internal/domain"
	"library-stats/internal/render"
	"library-stats/internal/repository/sqlite"
	"library-stats/internal/seed"
	"library-stats/internal/service"
	"library-stats/internal/storage"
)

type options struct {
	seed    bool
	now     string
	from    string
	to      string
	top     int
	archive bool
	json    bool
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)

	var opts options
	flags := pflag.NewFlagSet("libstats", pflag.ExitOnError)
	flags.BoolVar(&opts.seed, "seed", false, "wipe the database and generate fresh records before reporting")
	flags.StringVar(&opts.now, "now", "", "analysis date (YYYY-MM-DD), defaults to today")
	flags.StringVar(&opts.from, "from", "", "first loan date included in duration and rate statistics")
	flags.StringVar(&opts.to, "to", "", "first loan date excluded from duration and rate statistics")
	flags.IntVar(&opts.top, "top", 0, "number of top borrowers to list")
	flags.BoolVar(&opts.archive, "archive", false, "upload the report to the configured bucket")
	flags.BoolVar(&opts.json, "json", false, "print the report as JSON")
	flags.String("database-path", "", "sqlite database file")
	flags.String("storage-bucket", "", "bucket for archived reports")
	flags.Int("seed-books", 0, "books to generate")
	flags.Int("seed-users", 0, "users to generate")
	flags.Int64("seed-random", 0, "random seed, 0 uses the clock")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer, logger *logrus.Logger) error {
	now := domain.Truncate(time.Now())
	if opts.now != "" {
		parsed, err := domain.ParseDate(opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		now = parsed
	}
	period, err := parsePeriod(opts.from, opts.to)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	repos := sqlite.NewRepositories(db)
	if err := repos.Init(ctx); err != nil {
		return fmt.Errorf("init repositories: %w", err)
	}

	if opts.seed {
		seeder := seed.New(repos, seed.Config{
			Books:    cfg.Seed.Books,
			Users:    cfg.Seed.Users,
			MinLoans: cfg.Seed.MinLoans,
			MaxLoans: cfg.Seed.MaxLoans,
			Logger:   logger,
		}, seed.NewRand(cfg.Seed.Random))
		if _, err := seeder.Seed(ctx, now); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	var storageSvc storage.Service
	if opts.archive {
		if storageSvc, err = buildStorage(ctx, cfg); err != nil {
			return fmt.Errorf("setup storage: %w", err)
		}
	}

	analyticsService := service.NewAnalyticsService(service.AnalyticsConfig{
		TopBorrowers: cfg.Report.TopBorrowers,
		Bucket:       cfg.Storage.Bucket,
		KeyPrefix:    cfg.Storage.KeyPrefix,
		Clock:        func() time.Time { return now },
		Logger:       logger,
	}, repos.RecordStore(), storageSvc)

	report, err := analyticsService.Report(ctx, service.ReportRequest{
		Period:       period,
		TopBorrowers: opts.top,
	})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if opts.json {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else if err := render.Text(out, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.archive {
		result, err := analyticsService.Archive(ctx, report)
		if err != nil {
			return err
		}
		logger.WithField("key", result.Key).Infof("archived at %s", result.Location)
		if result.URL != "" {
			logger.Infof("download: %s", result.URL)
		}
	}
	return nil
}

func parsePeriod(from, to string) (domain.Period, error) {
	var period domain.Period
	if from != "" {
		t, err := domain.ParseDate(from)
		if err != nil {
			return period, fmt.Errorf("invalid --from: %w", err)
		}
		period.From = t
	}
	if to != "" {
		t, err := domain.ParseDate(to)
		if err != nil {
			return period, fmt.Errorf("invalid --to: %w", err)
		}
		period.To = t
	}
	if !period.From.IsZero() && !period.To.IsZero() && !period.From.Before(period.To) {
		return period, fmt.Errorf("--from %s must be before --to %s", from, to)
	}
	return period, nil
}

func buildStorage(ctx context.Context, cfg config.Config) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, service.ErrArchiveDisabled
	}
	return storage.Connect(ctx, storage.ConnectOptions{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
}
