package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// CRMClient talks to the LeadConnector-style contacts API
type CRMClient struct {
	BaseURL    string
	APIKey     string
	LocationID string
	APIVersion string
	HTTPClient *http.Client
}

// CRMContact is the subset of a CRM contact this service reads
type CRMContact struct {
	ID         string   `json:"id"`
	LocationID string   `json:"locationId,omitempty"`
	Name       string   `json:"name,omitempty"`
	FirstName  string   `json:"firstName,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// CRMSearchResponse is returned by GET /contacts/
type CRMSearchResponse struct {
	Contacts []CRMContact `json:"contacts"`
}

// CRMCreateContactRequest is the body of POST /contacts/
type CRMCreateContactRequest struct {
	LocationID string `json:"locationId"`
	Phone      string `json:"phone"`
	Name       string `json:"name,omitempty"`
	Source     string `json:"source,omitempty"`
}

// CRMCreateContactResponse is returned by POST /contacts/
type CRMCreateContactResponse struct {
	Contact CRMContact `json:"contact"`
}

// CRMTagsRequest is the body of POST /contacts/{id}/tags
type CRMTagsRequest struct {
	Tags []string `json:"tags"`
}

// NewCRMClient creates a CRM client bound to one location
func NewCRMClient(baseURL, apiKey, locationID, apiVersion string, timeout time.Duration) *CRMClient {
	return &CRMClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		LocationID: locationID,
		APIVersion: apiVersion,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// SearchContacts looks up contacts in the location matching query
func (c *CRMClient) SearchContacts(ctx context.Context, query string) ([]CRMContact, error) {
	q := url.Values{}
	q.Set("locationId", c.LocationID)
	q.Set("query", query)
	endpoint := fmt.Sprintf("%s/contacts/?%s", c.BaseURL, q.Encode())

	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewCRMError(domain.OpCRMLookup, 0, "", err)
	}
	if !isSuccess(status) {
		return nil, domain.NewCRMError(domain.OpCRMLookup, status, string(body), nil)
	}

	var resp CRMSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewCRMError(domain.OpCRMLookup, status, string(body), fmt.Errorf("failed to decode response: %w", err))
	}

	logger.Debug(ctx, "CRM contact search", zap.String("query", query), zap.Int("results", len(resp.Contacts)))
	return resp.Contacts, nil
}

// CreateContact creates a contact with phone under the configured location
func (c *CRMClient) CreateContact(ctx context.Context, name, phone string) (*CRMContact, error) {
	payload, err := json.Marshal(CRMCreateContactRequest{
		LocationID: c.LocationID,
		Phone:      phone,
		Name:       name,
		Source:     "outbound-caller",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, c.BaseURL+"/contacts/", payload)
	if err != nil {
		return nil, domain.NewCRMError(domain.OpCRMCreate, 0, "", err)
	}
	if !isSuccess(status) {
		return nil, domain.NewCRMError(domain.OpCRMCreate, status, string(body), nil)
	}

	var resp CRMCreateContactResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Contact.ID == "" {
		return nil, domain.NewCRMError(domain.OpCRMCreate, status, string(body), fmt.Errorf("response has no contact id"))
	}

	logger.Info(ctx, "CRM contact created", zap.String("contact_id", resp.Contact.ID))
	return &resp.Contact, nil
}

// AddTags attaches tags to a contact. The CRM merges them with existing tags.
func (c *CRMClient) AddTags(ctx context.Context, contactID string, tags []string) error {
	payload, err := json.Marshal(CRMTagsRequest{Tags: tags})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/contacts/%s/tags", c.BaseURL, url.PathEscape(contactID))
	status, body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return domain.NewCRMError(domain.OpCRMTag, 0, "", err)
	}
	if !isSuccess(status) {
		return domain.NewCRMError(domain.OpCRMTag, status, string(body), nil)
	}
	return nil
}

func (c *CRMClient) do(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Version", c.APIVersion)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if !isSuccess(resp.StatusCode) {
		logger.Warn(ctx, "CRM API error response",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
