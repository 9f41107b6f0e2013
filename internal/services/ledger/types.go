package ledger

import (
	"errors"
	"fmt"

	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

// GameResult is a client-reported outcome. Amount is the magnitude won or lost.
type GameResult struct {
	GameID int64
	Amount int64
	IsWin  bool
}

func (r GameResult) Kind() transactions.Kind {
	if r.IsWin {
		return transactions.KindWin
	}
	return transactions.KindLoss
}

// Request is a caller's transaction intent. An empty Status means completed.
type Request struct {
	Amount int64
	Type   transactions.Kind
	Method *string
	Status transactions.Status
}

const maxMethodLen = 64

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidAmount       = errors.New("amount must be a positive whole number of coins")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidType         = errors.New("type must be one of deposit, withdrawal, win, loss")
	ErrInvalidStatus       = errors.New("status not allowed for this transaction")
	ErrNotDeposit          = errors.New("transaction is not a deposit")
	ErrBalanceLimit        = errors.New("credit would exceed the maximum balance")
)

// AmountRangeError rejects a deposit outside the configured limits.
type AmountRangeError struct {
	Amount int64
	Min    int64
	Max    int64
}

func (e *AmountRangeError) Error() string {
	return fmt.Sprintf("deposit amount %d outside allowed range %d..%d", e.Amount, e.Min, e.Max)
}

func (e *AmountRangeError) Is(target error) bool {
	return target == ErrInvalidAmount
}
