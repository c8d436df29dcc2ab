package servicem8

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/config"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func testClient(serverURL string) *Client {
	return NewClient(config.ServiceM8Config{
		BaseURL:        serverURL,
		Email:          "user@example.com",
		Password:       "secret",
		TimeoutSeconds: 5,
		RateLimitRPS:   1000,
	})
}

func TestListChangedContacts_SendsEditDateFilter(t *testing.T) {
	var gotFilter string
	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("$filter")
		_, _, gotAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`[{"uuid":"contact-1","first":"Jane","last":"Doe","email":"jane@example.com"}]`))
	}))
	defer server.Close()

	since := time.Date(2026, 3, 10, 11, 40, 0, 0, time.UTC)
	contacts, err := testClient(server.URL).ListChangedContacts(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, "edit_date gt '2026-03-10 11:40:00'", gotFilter)
	assert.True(t, gotAuth)
	require.Len(t, contacts, 1)
	assert.Equal(t, "contact-1", contacts[0].UUID)
	assert.Equal(t, "Jane", contacts[0].FirstName)
}

func TestDoRequest_AuthFailureIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListChangedContacts(context.Background(), time.Now())
	require.Error(t, err)

	var authErr *errors.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, int32(1), requests.Load())
}

func TestDoRequest_ServerErrorRetriedThenSucceeds(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	contacts, err := testClient(server.URL).ListChangedContacts(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, contacts)
	assert.Equal(t, int32(2), requests.Load())
}

func TestDoRequest_ExhaustedRetriesSurfaceRetryableError(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListChangedContacts(context.Background(), time.Now())
	require.Error(t, err)

	var retryErr *errors.RetryableError
	assert.ErrorAs(t, err, &retryErr)
	assert.Equal(t, int32(maxAttempts), requests.Load())
}

func TestGetJob_NotFoundIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetJob(context.Background(), "missing-job")
	require.Error(t, err)

	var permErr *errors.PermanentError
	assert.ErrorAs(t, err, &permErr)
}

func TestCreateCompany_UuidFromHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/company.json", r.URL.Path)
		w.Header().Set("x-record-uuid", "company-uuid-1")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	uuid, err := testClient(server.URL).CreateCompany(context.Background(), Company{Name: "Jane Doe", Active: 1})
	require.NoError(t, err)
	assert.Equal(t, "company-uuid-1", uuid)
}

func TestCreateJob_UuidFromBodyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"uuid":"job-uuid-1"}`))
	}))
	defer server.Close()

	uuid, err := testClient(server.URL).CreateJob(context.Background(), Job{Status: "Work Order", Active: 1})
	require.NoError(t, err)
	assert.Equal(t, "job-uuid-1", uuid)
}

func TestCreateJob_MissingUuidIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateJob(context.Background(), Job{})
	require.Error(t, err)

	var permErr *errors.PermanentError
	assert.ErrorAs(t, err, &permErr)
}

func TestUploadAttachmentFile_SingleAttempt(t *testing.T) {
	var requests atomic.Int32
	var gotBody string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotPath = r.URL.Path
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := testClient(server.URL).UploadAttachmentFile(context.Background(), "att-1", "image/jpeg", strings.NewReader("bytes"))
	require.Error(t, err)

	var retryErr *errors.RetryableError
	assert.ErrorAs(t, err, &retryErr)
	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, "/attachment/att-1.file", gotPath)
	assert.Equal(t, "bytes", gotBody)
}

func TestParseEditDate(t *testing.T) {
	assert.True(t, ParseEditDate("").IsZero())
	assert.True(t, ParseEditDate("0000-00-00 00:00:00").IsZero())

	parsed := ParseEditDate("2026-03-10 11:40:00")
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
}

func TestJobHasBadge(t *testing.T) {
	job := Job{Badges: `["badge-a","badge-b"]`}
	assert.True(t, job.HasBadge("badge-a"))
	assert.False(t, job.HasBadge("badge-c"))
	assert.False(t, job.HasBadge(""))

	unbadged := Job{}
	assert.False(t, unbadged.HasBadge("badge-a"))
}
