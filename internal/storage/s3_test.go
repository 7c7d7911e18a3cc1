package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>reports</Name>
  <Prefix>library</Prefix>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>library/2024-06-30/report-1.json</Key>
    <Size>42</Size>
    <LastModified>2024-06-30T12:00:00.000Z</LastModified>
  </Contents>
</ListBucketResult>`

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newTestService(t *testing.T) (*S3Service, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		if r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2" {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, listResponse)
			return
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
	})
	return NewS3Service(client), &requests
}

func TestS3Service_PutObject(t *testing.T) {
	svc, requests := newTestService(t)

	location, err := svc.PutObject(context.Background(), strings.NewReader(`{"ok":true}`), PutOptions{
		Bucket:      "reports",
		Key:         "/library/report.json",
		ContentType: "application/json",
	})

	require.NoError(t, err)
	assert.Equal(t, "s3://reports/library/report.json", location)
	require.NotEmpty(t, *requests)
	assert.Equal(t, http.MethodPut, (*requests)[0].method)
	assert.Equal(t, "/reports/library/report.json", (*requests)[0].path)
}

func TestS3Service_PutObjectValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PutObject(context.Background(), strings.NewReader("x"), PutOptions{Key: "k"})
	assert.Error(t, err)
	_, err = svc.PutObject(context.Background(), strings.NewReader("x"), PutOptions{Bucket: "b"})
	assert.Error(t, err)
}

func TestS3Service_ListObjects(t *testing.T) {
	svc, _ := newTestService(t)

	objects, err := svc.ListObjects(context.Background(), "reports", "library")

	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "library/2024-06-30/report-1.json", objects[0].Key)
	assert.Equal(t, int64(42), objects[0].Size)
	require.NotNil(t, objects[0].LastModified)
	assert.True(t, objects[0].LastModified.Equal(time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)))
}

func TestS3Service_GetObjectURL(t *testing.T) {
	svc, requests := newTestService(t)

	url, err := svc.GetObjectURL(context.Background(), "reports", "library/report.json", time.Minute)

	require.NoError(t, err)
	assert.Contains(t, url, "/reports/library/report.json")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Empty(t, *requests)
}
