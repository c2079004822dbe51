package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	OccurredAt     string `json:"occurred_at"`
	Amount         string `json:"amount"`
	Comment        string `json:"comment"`
	CounterpartyID *int64 `json:"counterparty_id"`
	GroupID        *int64 `json:"group_id"`
	AccountID      int64  `json:"account_id"`
}

type transactionResponse struct {
	OccurredAt     string `json:"occurred_at"`
	Amount         string `json:"amount"`
	Comment        string `json:"comment,omitempty"`
	CounterpartyID *int64 `json:"counterparty_id,omitempty"`
	GroupID        *int64 `json:"group_id,omitempty"`
	ID             int64  `json:"id"`
	AccountID      int64  `json:"account_id"`
}

func toTransactionResponse(txn *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:             txn.ID,
		OccurredAt:     txn.OccurredAt.UTC().Format(time.RFC3339),
		Amount:         txn.Amount.String(),
		Comment:        txn.Comment,
		AccountID:      txn.AccountID,
		CounterpartyID: txn.CounterpartyID,
		GroupID:        txn.GroupID,
	}
}

func (s *Server) parseTransactionRequest(r *http.Request) (*model.Transaction, error) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}

	if req.AccountID <= 0 || req.Amount == "" {
		return nil, fmt.Errorf("%w: account and amount are required", common.ErrValidation)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", common.ErrValidation, req.Amount)
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid occurred_at %q", common.ErrValidation, req.OccurredAt)
		}
	}

	// Every entity reference must resolve within the caller's own ledger
	if _, err := s.store.GetAccountByID(r.Context(), req.AccountID, userID(r)); err != nil {
		return nil, err
	}
	if req.CounterpartyID != nil {
		if _, err := s.store.GetCounterpartyByID(r.Context(), *req.CounterpartyID, userID(r)); err != nil {
			return nil, err
		}
	}
	if req.GroupID != nil {
		if _, err := s.store.GetGroupByID(r.Context(), *req.GroupID, userID(r)); err != nil {
			return nil, err
		}
	}

	return &model.Transaction{
		OccurredAt:     occurredAt,
		Amount:         amount,
		Comment:        req.Comment,
		AccountID:      req.AccountID,
		CounterpartyID: req.CounterpartyID,
		GroupID:        req.GroupID,
	}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid year %q", common.ErrValidation, v))
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, fmt.Errorf("%w: invalid month %q", common.ErrValidation, v))
			return
		}
		month = time.Month(parsed)
	}

	transactions, err := s.store.ListTransactionsByMonth(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	total := decimal.Zero
	for idx := range transactions {
		resp = append(resp, toTransactionResponse(&transactions[idx]))
		total = total.Add(transactions[idx].Amount)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": resp,
		"total":        total.String(),
		"year":         year,
		"month":        int(month),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.parseTransactionRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.CreateTransaction(r.Context(), txn); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	txn, err := s.parseTransactionRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txn.ID = id

	if err := s.store.UpdateTransaction(r.Context(), txn, userID(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(txn))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id, userID(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
