package planfact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operationsPage = `{
	"data": {
		"items": [
			{
				"isCommitted": true,
				"operationType": "Income",
				"operationDate": "2024-03-15T10:00:00",
				"createDate": "2024-03-15T10:05:00.1234567",
				"value": 150.00,
				"comment": "Invoice 42",
				"account": {"title": "Main Income"},
				"operationParts": [
					{
						"contrAgent": {"title": "Acme LLC"},
						"operationCategory": {"title": "Sales"}
					}
				]
			},
			{
				"isCommitted": false,
				"operationType": "Outcome",
				"operationDate": "2024-03-14",
				"createDate": "2024-03-14",
				"value": 75.50,
				"comment": "",
				"account": {"title": "Main Expense"},
				"operationParts": [
					{
						"contrAgent": {"title": "не выбран"},
						"operationCategory": null
					}
				]
			}
		]
	}
}`

func TestClient_GetOperations(t *testing.T) {
	var gotRequest *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(operationsPage))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	since := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	ops, err := client.GetOperations(context.Background(), "test-key", &since, 10)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	// Request carries the API key and a date-only lower bound
	assert.Equal(t, "test-key", gotRequest.Header.Get("X-ApiKey"))
	assert.Equal(t, "/operations", gotRequest.URL.Path)
	assert.Equal(t, "10", gotRequest.URL.Query().Get("limit"))
	assert.Equal(t, "2024-03-10", gotRequest.URL.Query().Get("dateFrom"))

	first := ops[0]
	assert.True(t, first.Committed)
	assert.Equal(t, OperationIncome, first.Type)
	assert.True(t, first.Value.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), first.OccurredAt)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 5, 0, 123456700, time.UTC), first.RecordedAt)
	assert.Equal(t, "Main Income", first.AccountTitle)
	assert.Equal(t, "Acme LLC", first.CounterpartyTitle)
	assert.Equal(t, "Sales", first.CategoryTitle)
	assert.Equal(t, "Invoice 42", first.Comment)

	second := ops[1]
	assert.False(t, second.Committed)
	assert.Equal(t, OperationOutcome, second.Type)
	assert.Equal(t, "не выбран", second.CounterpartyTitle)
	assert.Empty(t, second.CategoryTitle)
}

func TestClient_GetOperationsNoWatermark(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("dateFrom"), "dateFrom must be omitted without a watermark")
		_, _ = w.Write([]byte(`{"data": {"items": []}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	ops, err := client.GetOperations(context.Background(), "test-key", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestClient_GetOperationsErrors(t *testing.T) {
	tests := []struct {
		wantErr error
		handler http.HandlerFunc
		name    string
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
			},
			wantErr: common.ErrFeedUnavailable,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: common.ErrFeedUnavailable,
		},
		{
			name: "malformed timestamp fails the page",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data": {"items": [{
					"isCommitted": true,
					"operationType": "Income",
					"operationDate": "not-a-date",
					"createDate": "2024-03-15",
					"value": 1,
					"account": {"title": "Main Income"}
				}]}}`))
			},
			wantErr: common.ErrMalformedTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))

			_, err := client.GetOperations(context.Background(), "test-key", nil, 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
