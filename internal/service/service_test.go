package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-stats/internal/analytics"
	"library-stats/internal/domain"
	"library-stats/internal/repository"
	"library-stats/internal/repository/memory"
	"library-stats/internal/storage"
)

var fixedNow = domain.Date(2024, time.June, 30)

type fakeStorage struct {
	puts       map[string][]byte
	opts       []storage.PutOptions
	putErr     error
	presignErr error
	objects    []storage.ObjectInfo
	listPrefix string
}

func (f *fakeStorage) PutObject(_ context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[opts.Key] = data
	f.opts = append(f.opts, opts)
	return storage.Location(opts.Bucket, opts.Key), nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	f.listPrefix = prefix
	return f.objects, nil
}

func (f *fakeStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.example/" + bucket + "/" + key, nil
}

func givenRecords(t *testing.T) repository.Set {
	t.Helper()
	ctx := context.Background()
	repos := memory.New()

	for _, b := range []domain.Book{
		{ID: 1, Title: "Book 1", Author: "Author 1", Status: domain.BookStatusBorrowed, Rating: 4},
		{ID: 2, Title: "Book 2", Author: "Author 2", Status: domain.BookStatusAvailable, Rating: 3},
	} {
		_, err := repos.Books.Create(ctx, &b)
		require.NoError(t, err)
	}
	for _, u := range []domain.User{{ID: 1, Name: "User 1"}, {ID: 2, Name: "User 2"}} {
		_, err := repos.Users.Create(ctx, &u)
		require.NoError(t, err)
	}
	returned := domain.Date(2024, time.January, 11)
	for _, l := range []domain.Loan{
		{ID: 1, BookID: 1, UserID: 1, LoanDate: domain.Date(2024, time.January, 1), ReturnDate: &returned},
		{ID: 2, BookID: 1, UserID: 2, LoanDate: domain.Date(2024, time.March, 1)},
		{ID: 3, BookID: 2, UserID: 2, LoanDate: domain.Date(2024, time.April, 1)},
		{ID: 4, BookID: 99, UserID: 2, LoanDate: domain.Date(2024, time.May, 1)},
	} {
		_, err := repos.Loans.Create(ctx, &l)
		require.NoError(t, err)
	}
	return repos
}

func newTestAnalytics(t *testing.T, store storage.Service) (AnalyticsService, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	svc := NewAnalyticsService(AnalyticsConfig{
		TopBorrowers: 3,
		Bucket:       "reports",
		KeyPrefix:    "/library/",
		Clock:        func() time.Time { return fixedNow },
		Logger:       logger,
	}, givenRecords(t).RecordStore(), store)
	return svc, hook
}

func TestAnalyticsService_ReportUsesClockAndLogsWarnings(t *testing.T) {
	svc, hook := newTestAnalytics(t, nil)

	report, err := svc.Report(context.Background(), ReportRequest{})

	require.NoError(t, err)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, 3, report.TotalLoans)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, analytics.WarningDanglingReference, report.Warnings[0].Kind)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, int64(4), entry.Data["loan_id"])
		}
	}
	assert.True(t, warned)
	assert.True(t, report.SimultaneousLoans.Found)
	assert.Equal(t, int64(2), report.SimultaneousLoans.UserID)
}

func TestAnalyticsService_ReportHonoursRequest(t *testing.T) {
	svc, _ := newTestAnalytics(t, nil)
	now := domain.Date(2024, time.March, 15)

	report, err := svc.Report(context.Background(), ReportRequest{
		Now:          &now,
		Period:       domain.Period{From: domain.Date(2024, time.February, 1)},
		TopBorrowers: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, now, report.GeneratedAt)
	assert.Len(t, report.TopBorrowers, 1)
	assert.Equal(t, 2, report.LoanRate.Loans)
	// the loan starting April 1 is after now and cannot overlap
	assert.Equal(t, 1, report.SimultaneousLoans.PeakSimultaneous)
}

func TestAnalyticsService_Archive(t *testing.T) {
	store := &fakeStorage{}
	svc, _ := newTestAnalytics(t, store)
	report, err := svc.Report(context.Background(), ReportRequest{})
	require.NoError(t, err)

	result, err := svc.Archive(context.Background(), report)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "library/2024-06-30/report-"), result.Key)
	assert.True(t, strings.HasSuffix(result.Key, ".json"))
	assert.Equal(t, "s3://reports/"+result.Key, result.Location)
	assert.Equal(t, "https://signed.example/reports/"+result.Key, result.URL)
	require.Len(t, store.opts, 1)
	assert.Equal(t, "application/json", store.opts[0].ContentType)

	var decoded analytics.Report
	require.NoError(t, json.Unmarshal(store.puts[result.Key], &decoded))
	assert.Equal(t, report.TotalLoans, decoded.TotalLoans)
	assert.True(t, bytes.Contains(store.puts[result.Key], []byte(`"most_borrowed_book"`)))
}

func TestAnalyticsService_ArchiveSurvivesPresignFailure(t *testing.T) {
	store := &fakeStorage{presignErr: errors.New("no signer")}
	svc, _ := newTestAnalytics(t, store)

	result, err := svc.Archive(context.Background(), analytics.Report{GeneratedAt: fixedNow})

	require.NoError(t, err)
	assert.Empty(t, result.URL)
}

func TestAnalyticsService_ArchiveErrors(t *testing.T) {
	disabled, _ := newTestAnalytics(t, nil)
	_, err := disabled.Archive(context.Background(), analytics.Report{})
	assert.ErrorIs(t, err, ErrArchiveDisabled)
	_, err = disabled.ListArchives(context.Background())
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	failing, _ := newTestAnalytics(t, &fakeStorage{putErr: errors.New("boom")})
	_, err = failing.Archive(context.Background(), analytics.Report{})
	assert.ErrorContains(t, err, "boom")
}

func TestAnalyticsService_ListArchives(t *testing.T) {
	store := &fakeStorage{objects: []storage.ObjectInfo{{Key: "library/a.json", Size: 3}}}
	svc, _ := newTestAnalytics(t, store)

	objects, err := svc.ListArchives(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "library", store.listPrefix)
	assert.Len(t, objects, 1)
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(givenRecords(t).RecordStore())

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	_, err = svc.GetBook(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.GetUser(ctx, 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user := int64(2)
	loans, err := svc.ListLoans(ctx, repository.LoanFilter{UserID: &user})
	require.NoError(t, err)
	assert.Len(t, loans, 3)

	bad := int64(-1)
	_, err = svc.ListLoans(ctx, repository.LoanFilter{UserID: &bad})
	assert.ErrorIs(t, err, ErrInvalidID)
}
