// Package planfact wraps the PlanFact operations API consumed by the
// sync engine.
package planfact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the production PlanFact API endpoint.
const DefaultBaseURL = "https://api.planfact.io/api/v1"

// Client fetches operation pages from the PlanFact API. Authentication is
// per-request via the X-ApiKey header, so one client serves all credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a PlanFact API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOperations fetches one page of operations, newest window first as
// ordered by the source. A nil since fetches without a lower bound; the
// feed's dateFrom parameter is date-only. Non-200 responses wrap
// common.ErrFeedUnavailable; unparseable timestamps in the payload wrap
// common.ErrMalformedTimestamp and fail the whole page.
func (c *Client) GetOperations(ctx context.Context, apiKey string, since *time.Time, limit int) ([]Operation, error) {
	u, err := url.Parse(c.baseURL + "/operations")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	if since != nil {
		q.Set("dateFrom", since.Format("2006-01-02"))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-ApiKey", apiKey)

	slog.Debug("Requesting PlanFact operations",
		"limit", limit,
		"url_params", u.RawQuery)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operations: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d - %s", common.ErrFeedUnavailable, resp.StatusCode, string(body))
	}

	var envelope operationsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	operations := make([]Operation, 0, len(envelope.Data.Items))
	for _, raw := range envelope.Data.Items {
		op, err := parseOperation(raw)
		if err != nil {
			return nil, err
		}
		operations = append(operations, op)
	}

	return operations, nil
}

func parseOperation(raw rawOperation) (Operation, error) {
	occurredAt, err := ParseTimestamp(raw.OperationDate)
	if err != nil {
		return Operation{}, fmt.Errorf("operation date: %w", err)
	}

	recordedAt, err := ParseTimestamp(raw.CreateDate)
	if err != nil {
		return Operation{}, fmt.Errorf("create date: %w", err)
	}

	value, err := decimal.NewFromString(raw.Value.String())
	if err != nil {
		return Operation{}, fmt.Errorf("failed to parse value %q: %w", raw.Value.String(), err)
	}

	op := Operation{
		Committed:    raw.IsCommitted,
		Type:         OperationType(raw.OperationType),
		OccurredAt:   occurredAt,
		RecordedAt:   recordedAt,
		Value:        value,
		AccountTitle: raw.Account.Title,
		Comment:      raw.Comment,
	}

	// Counterparty and category ride on the first operation part when present
	if len(raw.OperationParts) > 0 {
		part := raw.OperationParts[0]
		if part.ContrAgent != nil {
			op.CounterpartyTitle = part.ContrAgent.Title
		}
		if part.OperationCategory != nil {
			op.CategoryTitle = part.OperationCategory.Title
		}
	}

	return op, nil
}
