package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"library-stats/internal/analytics"
	"library-stats/internal/domain"
	"library-stats/internal/repository"
	"library-stats/internal/storage"
)

const archiveURLTTL = 15 * time.Minute

var (
	// ErrArchiveDisabled is returned when no object storage is configured.
	ErrArchiveDisabled = errors.New("report archive is not configured")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// ReportRequest parameterizes one analysis run. A nil Now uses the service clock.
type ReportRequest struct {
	Now          *time.Time
	Period       domain.Period
	TopBorrowers int
}

// ArchiveResult locates an archived report.
type ArchiveResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	URL      string `json:"url,omitempty"`
}

// AnalyticsService produces loan reports from the record store and archives them.
type AnalyticsService interface {
	Report(ctx context.Context, req ReportRequest) (analytics.Report, error)
	Archive(ctx context.Context, report analytics.Report) (*ArchiveResult, error)
	ListArchives(ctx context.Context) ([]storage.ObjectInfo, error)
}

type AnalyticsConfig struct {
	TopBorrowers int
	Bucket       string
	KeyPrefix    string
	Clock        func() time.Time
	Logger       *logrus.Logger
}

type analyticsService struct {
	cfg     AnalyticsConfig
	records repository.RecordStore
	storage storage.Service
}

// NewAnalyticsService wires the report pipeline. store may be nil, which disables archiving.
func NewAnalyticsService(cfg AnalyticsConfig, records repository.RecordStore, store storage.Service) AnalyticsService {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &analyticsService{
		cfg:     cfg,
		records: records,
		storage: store,
	}
}

func (s *analyticsService) Report(ctx context.Context, req ReportRequest) (analytics.Report, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return analytics.Report{}, err
	}

	now := s.cfg.Clock().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	top := req.TopBorrowers
	if top <= 0 {
		top = s.cfg.TopBorrowers
	}

	report := analytics.Analyze(snapshot, now,
		analytics.WithTopBorrowers(top),
		analytics.WithPeriod(req.Period),
	)

	for _, w := range report.Warnings {
		entry := s.cfg.Logger.WithField("kind", w.Kind)
		if w.LoanID != 0 {
			entry = entry.WithField("loan_id", w.LoanID)
		}
		entry.Warn(w.Message)
	}
	s.cfg.Logger.WithFields(logrus.Fields{
		"books":    report.TotalBooks,
		"users":    report.TotalUsers,
		"loans":    report.TotalLoans,
		"warnings": len(report.Warnings),
	}).Debug("report generated")

	return report, nil
}

// snapshot copies all records out of the store for one run.
func (s *analyticsService) snapshot(ctx context.Context) (analytics.Snapshot, error) {
	books, err := s.records.ListBooks(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load books: %w", err)
	}
	users, err := s.records.ListUsers(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	loans, err := s.records.ListLoans(ctx, repository.LoanFilter{})
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load loans: %w", err)
	}
	return analytics.Snapshot{Books: books, Users: users, Loans: loans}, nil
}

func (s *analyticsService) Archive(ctx context.Context, report analytics.Report) (*ArchiveResult, error) {
	if s.storage == nil || s.cfg.Bucket == "" {
		return nil, ErrArchiveDisabled
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	key := archiveKey(s.cfg.KeyPrefix, report.GeneratedAt)
	location, err := s.storage.PutObject(ctx, bytes.NewReader(payload), storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("archive report: %w", err)
	}

	result := &ArchiveResult{Key: key, Location: location}
	if url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, key, archiveURLTTL); err != nil {
		s.cfg.Logger.WithField("key", key).Warnf("presign archived report: %v", err)
	} else {
		result.URL = url
	}

	s.cfg.Logger.Infof("report archived to %s", location)
	return result, nil
}

func (s *analyticsService) ListArchives(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.storage == nil || s.cfg.Bucket == "" {
		return nil, ErrArchiveDisabled
	}
	return s.storage.ListObjects(ctx, s.cfg.Bucket, strings.Trim(s.cfg.KeyPrefix, "/"))
}

func archiveKey(prefix string, generatedAt time.Time) string {
	name := fmt.Sprintf("%s/report-%s.json", generatedAt.UTC().Format(domain.DateLayout), uuid.NewString())
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + name
	}
	return name
}
