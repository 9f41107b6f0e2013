package ledger

import (
	"context"
	"errors"

	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

// Metrics receives one call per ledger request outcome.
type Metrics interface {
	Applied(ctx context.Context, kind transactions.Kind, amount int64)
	Rejected(ctx context.Context, kind transactions.Kind, reason string)
}

type noopMetrics struct{}

func (noopMetrics) Applied(context.Context, transactions.Kind, int64)   {}
func (noopMetrics) Rejected(context.Context, transactions.Kind, string) {}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrBalanceLimit):
		return "balance_limit"
	case errors.Is(err, ErrInvalidType):
		return "invalid_type"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, users.ErrUserNotFound):
		return "user_not_found"
	default:
		return "error"
	}
}
