package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos/games"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
	"github.com/fastprodman/betroyal/internal/services/accounts"
	"github.com/fastprodman/betroyal/internal/services/ledger"
)

const (
	maxBodyBytes = 1 << 20

	// Largest magnitude a float64 holds without losing whole-number precision.
	maxExactFloat = 1 << 53
)

type errorBody struct {
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.WithError(err).Error("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

func writeFieldErrors(w http.ResponseWriter, msg string, fields []validation.FieldError) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: msg, Errors: fields})
}

// writeServiceError maps domain errors to status codes. Unknown errors are
// logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *validation.Error
		rangeErr *ledger.AmountRangeError
	)

	switch {
	case errors.As(err, &verr):
		writeFieldErrors(w, "Invalid request data", verr.Fields)
	case errors.As(err, &rangeErr):
		writeFieldErrors(w, "Invalid amount", []validation.FieldError{{Field: "amount", Message: rangeErr.Error()}})

	case errors.Is(err, ledger.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenRevoked):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, accounts.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, "Account is disabled")

	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Invalid amount")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, ledger.ErrBalanceLimit):
		writeError(w, http.StatusBadRequest, "Balance limit exceeded")
	case errors.Is(err, ledger.ErrInvalidType):
		writeFieldErrors(w, "Invalid transaction data", []validation.FieldError{{Field: "type", Message: "must be one of deposit, withdrawal, win, loss"}})
	case errors.Is(err, ledger.ErrInvalidStatus):
		writeFieldErrors(w, "Invalid transaction data", []validation.FieldError{{Field: "status", Message: "status not allowed for this transaction"}})
	case errors.Is(err, users.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, users.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email already exists")

	case errors.Is(err, users.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, games.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, transactions.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found")

	case errors.Is(err, transactions.ErrStatusConflict):
		writeError(w, http.StatusConflict, "Transaction is no longer pending")
	case errors.Is(err, ledger.ErrNotDeposit):
		writeError(w, http.StatusConflict, "Transaction is not a deposit")

	default:
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a size-capped JSON body into dst. Unknown fields are
// ignored; the storefront sends extra form state.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeFieldErrors(w, "Invalid request data", []validation.FieldError{{Field: typeErr.Field, Message: "has the wrong type"}})
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}

	return true
}

// parseIDParam reads a positive integer chi URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}

	return id, nil
}

// parseWhole converts a JSON number into an integer. 100 and 100.0 are
// accepted; 100.5 is not. Sign checks are left to the services.
func parseWhole(n json.Number, field string) (int64, error) {
	if n == "" {
		return 0, validation.Field(field, "is required")
	}

	v, err := n.Int64()
	if err == nil {
		return v, nil
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return 0, validation.Field(field, "must be a whole number")
	}

	return int64(f), nil
}

// parseGameAmount converts a win or loss amount into whole coins. Fractions
// round down for a win and up for a loss; sign checks are left to the ledger.
func parseGameAmount(n json.Number, kind transactions.Kind) (int64, error) {
	v, err := parseWhole(n, "amount")
	if err == nil || n == "" {
		return v, err
	}

	f, ferr := n.Float64()
	if ferr != nil || math.Abs(f) > maxExactFloat {
		return 0, validation.Field("amount", "must be a number")
	}

	if kind == transactions.KindLoss {
		return int64(math.Ceil(f)), nil
	}

	return int64(math.Floor(f)), nil
}
