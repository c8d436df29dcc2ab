package highlevel

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

	"github.com/DanishBukhari/IntegWithGhl/internal/system/config"
	errors2 "github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
)

const systemName = "highlevel"

const maxAttempts = 4

// Client is a typed accessor over the CRM contacts and webhook endpoints.
type Client struct {
	BaseURL    string
	WebhookURL string
	HTTPClient *http.Client

	apiKey string
}

// NewClient creates a Client from configuration. The bearer key is an opaque
// credential; acquisition and refresh live outside this component.
func NewClient(cfg config.HighLevelConfig) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		WebhookURL: cfg.WebhookURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		apiKey: cfg.APIKey,
	}
}

type apiResponse struct {
	status int
	body   []byte
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body []byte) (*apiResponse, error) {
	operation := func() (*apiResponse, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, backoff.Permanent(errors2.NewPermanentError(systemName, err))
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
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
				fmt.Errorf("%s %s returned status %d", method, endpoint, resp.StatusCode)))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("%s %s returned status %d", method, endpoint, resp.StatusCode)
		}

		// 404 is a meaningful answer for lookups; let callers interpret it.
		return &apiResponse{status: resp.StatusCode, body: respBody}, nil
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

// LookupContactByEmail searches the CRM for a contact with the given email.
// Returns (nil, nil) when no match exists; absence is not an error.
func (c *Client) LookupContactByEmail(ctx context.Context, email string) (*Contact, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, nil
	}

	endpoint := c.BaseURL + "/v1/contacts/lookup?email=" + url.QueryEscape(email)
	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, nil
	}
	if resp.status >= 400 {
		return nil, errors2.NewPermanentError(systemName,
			fmt.Errorf("contact lookup returned status %d", resp.status))
	}

	var result struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding contact lookup: %w", err))
	}

	// The lookup endpoint matches loosely; re-check email equality after
	// normalizing both sides.
	for i := range result.Contacts {
		if strings.TrimSpace(strings.ToLower(result.Contacts[i].Email)) == email {
			return &result.Contacts[i], nil
		}
	}
	return nil, nil
}

// CreateContact creates a CRM contact and returns the created record.
// Callers must search before creating; duplicate CRM records are the
// dominant failure mode of this integration.
func (c *Client) CreateContact(ctx context.Context, payload ContactPayload) (*Contact, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors2.NewPermanentError(systemName, err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.BaseURL+"/v1/contacts/", body)
	if err != nil {
		return nil, err
	}
	if resp.status >= 400 {
		return nil, errors2.NewPermanentError(systemName,
			fmt.Errorf("contact create returned status %d: %s", resp.status, strings.TrimSpace(string(resp.body))))
	}

	var result struct {
		Contact Contact `json:"contact"`
	}
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("decoding contact create: %w", err))
	}
	if result.Contact.ID == "" {
		return nil, errors2.NewPermanentError(systemName, fmt.Errorf("contact create returned no id"))
	}
	return &result.Contact, nil
}

// TriggerWebhook posts the payment notification to the configured webhook
// URL. No acknowledgement beyond the HTTP status is assumed.
func (c *Client) TriggerWebhook(ctx context.Context, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors2.NewPermanentError(systemName, err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.WebhookURL, body)
	if err != nil {
		return err
	}
	if resp.status >= 400 {
		return errors2.NewRetryableError(systemName,
			fmt.Errorf("webhook returned status %d", resp.status))
	}
	return nil
}
