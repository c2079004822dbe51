package planfact

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the feed-side direction of an operation.
type OperationType string

// Operation types reported by the feed.
const (
	OperationIncome  OperationType = "Income"
	OperationOutcome OperationType = "Outcome"
)

// Operation is one parsed record from the feed. Value is the unsigned
// magnitude as reported by the source; the ingestion engine derives the
// canonical signed amount from Type.
type Operation struct {
	OccurredAt        time.Time
	RecordedAt        time.Time
	Value             decimal.Decimal
	Type              OperationType
	AccountTitle      string
	CounterpartyTitle string
	CategoryTitle     string
	Comment           string
	Committed         bool
}

// Wire types for the operations endpoint. The envelope nests the record
// list under data.items.
type operationsEnvelope struct {
	Data struct {
		Items []rawOperation `json:"items"`
	} `json:"data"`
}

type rawOperation struct {
	OperationType  string       `json:"operationType"`
	OperationDate  string       `json:"operationDate"`
	CreateDate     string       `json:"createDate"`
	Value          json.Number  `json:"value"`
	Comment        string       `json:"comment"`
	Account        titledEntity `json:"account"`
	OperationParts []struct {
		ContrAgent        *titledEntity `json:"contrAgent"`
		OperationCategory *titledEntity `json:"operationCategory"`
	} `json:"operationParts"`
	IsCommitted bool `json:"isCommitted"`
}

type titledEntity struct {
	Title string `json:"title"`
}
