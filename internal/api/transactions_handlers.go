package api

import (
	"encoding/json"
	"net/http"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/services/ledger"
)

type transactionRequest struct {
	Amount json.Number `json:"amount"`
	Type   string      `json:"type"`
	Method *string     `json:"method"`
	Status string      `json:"status"`
}

type gameResultRequest struct {
	GameID json.Number `json:"gameId"`
	Amount json.Number `json:"amount"`
	IsWin  bool        `json:"isWin"`
}

type gameResultResponse struct {
	Success    bool  `json:"success"`
	NewBalance int64 `json:"newBalance"`
}

// CreateTransactionHandler handles POST /api/transactions
func (h *HandlerProvider) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kind := transactions.Kind(req.Type)

	var amount int64
	var err error
	if kind == transactions.KindWin || kind == transactions.KindLoss {
		amount, err = parseGameAmount(req.Amount, kind)
	} else {
		amount, err = parseWhole(req.Amount, "amount")
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tx, err := h.ledger.CreateTransaction(r.Context(), auth.FromContext(r.Context()), ledger.Request{
		Amount: amount,
		Type:   kind,
		Method: req.Method,
		Status: transactions.Status(req.Status),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

// ListOwnTransactionsHandler handles GET /api/transactions
func (h *HandlerProvider) ListOwnTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.History(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GameResultHandler handles POST /api/game-result
func (h *HandlerProvider) GameResultHandler(w http.ResponseWriter, r *http.Request) {
	var req gameResultRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	gameID, err := parseWhole(req.GameID, "gameId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := ledger.GameResult{GameID: gameID, IsWin: req.IsWin}
	res.Amount, err = parseGameAmount(req.Amount, res.Kind())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	balance, err := h.reporter.Report(r.Context(), auth.FromContext(r.Context()), res)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResultResponse{Success: true, NewBalance: balance})
}

// ListAllTransactionsHandler handles GET /api/admin/transactions
func (h *HandlerProvider) ListAllTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.All(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// ApproveDepositHandler handles POST /api/admin/transactions/{id}/approve
func (h *HandlerProvider) ApproveDepositHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	tx, err := h.ledger.ApproveDeposit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// RejectDepositHandler handles POST /api/admin/transactions/{id}/reject
func (h *HandlerProvider) RejectDepositHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	tx, err := h.ledger.RejectDeposit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}
