package servicem8

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/config"
	errors2 "github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
)

const systemName = "servicem8"

const maxAttempts = 4

// Client is a typed accessor over the field service REST API. All calls are
// rate limited, carry a bounded timeout, and retry transient failures with
// exponential backoff before surfacing a RetryableError.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	email    string
	password string
	limiter  *rate.Limiter
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.ServiceM8Config) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		email:    cfg.Email,
		password: cfg.Password,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
	}
}

type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

// doRequest performs one API call with rate limiting and bounded retries.
// 401/403 maps to AuthError, undecodable or unexpected responses to
// PermanentError, everything transient to RetryableError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors2.NewRetryableError(systemName, err)
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	operation := func() (*apiResponse, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, backoff.Permanent(errors2.NewPermanentError(systemName, err))
		}
		req.SetBasicAuth(c.email, c.password)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			// Transport errors and timeouts are retryable.
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, backoff.Permanent(errors2.NewAuthError(systemName,
				fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
		case resp.StatusCode >= 400:
			return nil, backoff.Permanent(errors2.NewPermanentError(systemName,
				fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))))
		}

		return &apiResponse{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxAttempts))
	if err != nil {
		var authErr *errors2.AuthError
		var permErr *errors2.PermanentError
		if errors.As(err, &authErr) || errors.As(err, &permErr) {
			return nil, err
		}
		return nil, errors2.NewRetryableError(systemName, err)
	}
	return resp, nil
}

func editDateFilter(since time.Time) url.Values {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("edit_date gt '%s'", FormatEditDate(since)))
	return q
}

// ListChangedContacts returns company contacts edited after the given time.
// The result is finite and not restartable; a fresh call re-queries.
func (c *Client) ListChangedContacts(ctx context.Context, since time.Time) ([]Contact, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/companycontact.json", editDateFilter(since), nil, "")
	if err != nil {
		return nil, err
	}
	var contacts []Contact
	if err := json.Unmarshal(resp.body, &contacts); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding companycontact list: %w", err))
	}
	return contacts, nil
}

// ListChangedPayments returns job payments edited after the given time.
func (c *Client) ListChangedPayments(ctx context.Context, since time.Time) ([]JobPayment, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/jobpayment.json", editDateFilter(since), nil, "")
	if err != nil {
		return nil, err
	}
	var payments []JobPayment
	if err := json.Unmarshal(resp.body, &payments); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding jobpayment list: %w", err))
	}
	return payments, nil
}

// GetJob fetches a single job by UUID.
func (c *Client) GetJob(ctx context.Context, jobUUID string) (*Job, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/job/"+jobUUID+".json", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(resp.body, &job); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding job %s: %w", jobUUID, err))
	}
	return &job, nil
}

// GetCompany fetches a single company by UUID.
func (c *Client) GetCompany(ctx context.Context, companyUUID string) (*Company, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/company/"+companyUUID+".json", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var company Company
	if err := json.Unmarshal(resp.body, &company); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding company %s: %w", companyUUID, err))
	}
	return &company, nil
}

// ListJobActivities returns the scheduled activities of a job.
func (c *Client) ListJobActivities(ctx context.Context, jobUUID string) ([]JobActivity, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("job_uuid eq '%s'", jobUUID))
	resp, err := c.doRequest(ctx, http.MethodGet, "/jobactivity.json", q, nil, "")
	if err != nil {
		return nil, err
	}
	var activities []JobActivity
	if err := json.Unmarshal(resp.body, &activities); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding jobactivity list: %w", err))
	}
	return activities, nil
}

// CreateCompany creates a company record and returns the server-assigned UUID.
func (c *Client) CreateCompany(ctx context.Context, company Company) (string, error) {
	body, err := json.Marshal(company)
	if err != nil {
		return "", errors2.NewPermanentError(systemName, err)
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/company.json", nil, body, "application/json")
	if err != nil {
		return "", err
	}
	return c.recordUUID(resp, "company")
}

// CreateJob creates a job record and returns the server-assigned UUID.
func (c *Client) CreateJob(ctx context.Context, job Job) (string, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return "", errors2.NewPermanentError(systemName, err)
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/job.json", nil, body, "application/json")
	if err != nil {
		return "", err
	}
	return c.recordUUID(resp, "job")
}

type attachmentRecord struct {
	RelatedObject     string `json:"related_object"`
	RelatedObjectUUID string `json:"related_object_uuid"`
	AttachmentName    string `json:"attachment_name"`
	FileType          string `json:"file_type"`
	Active            int    `json:"active"`
}

// CreateAttachment registers an attachment child record against a job or
// company and returns the attachment UUID. The binary content is uploaded
// separately with UploadAttachmentFile.
func (c *Client) CreateAttachment(ctx context.Context, relatedObject, relatedUUID, name, fileType string) (string, error) {
	record := attachmentRecord{
		RelatedObject:     relatedObject,
		RelatedObjectUUID: relatedUUID,
		AttachmentName:    name,
		FileType:          fileType,
		Active:            1,
	}
	body, err := json.Marshal(record)
	if err != nil {
		return "", errors2.NewPermanentError(systemName, err)
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/attachment.json", nil, body, "application/json")
	if err != nil {
		return "", err
	}
	return c.recordUUID(resp, "attachment")
}

// UploadAttachmentFile uploads the binary content of a previously created
// attachment record. The body is streamed, so this call makes exactly one
// attempt; the relay owns its retry.
func (c *Client) UploadAttachmentFile(ctx context.Context, attachmentUUID, contentType string, content io.Reader) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors2.NewRetryableError(systemName, err)
	}

	endpoint := c.BaseURL + "/attachment/" + attachmentUUID + ".file"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, content)
	if err != nil {
		return errors2.NewPermanentError(systemName, err)
	}
	req.SetBasicAuth(c.email, c.password)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors2.NewRetryableError(systemName, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors2.NewAuthError(systemName, fmt.Errorf("attachment upload returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return errors2.NewRetryableError(systemName, fmt.Errorf("attachment upload returned status %d", resp.StatusCode))
	}
	return nil
}

// recordUUID extracts the server-assigned UUID of a created record, first
// from the x-record-uuid header, then from the response body.
func (c *Client) recordUUID(resp *apiResponse, kind string) (string, error) {
	if uuid := resp.header.Get("x-record-uuid"); uuid != "" {
		return uuid, nil
	}
	var created struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil || created.UUID == "" {
		log.GetLogger().Debug(fmt.Sprintf("Create %s response carried no usable uuid", kind))
		return "", errors2.NewPermanentError(systemName, fmt.Errorf("create %s returned no record uuid", kind))
	}
	return created.UUID, nil
}
