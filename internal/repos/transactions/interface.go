package transactions

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStatusConflict      = errors.New("transaction status changed concurrently")
)

type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindWin        Kind = "win"
	KindLoss       Kind = "loss"
)

func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindWin, KindLoss:
		return true
	default:
		return false
	}
}

// Credit reports whether a completed transaction of this kind adds to the
// balance. Withdrawals and losses subtract.
func (k Kind) Credit() bool {
	return k == KindDeposit || k == KindWin
}

// Signed returns amount with the kind's sign applied.
func (k Kind) Signed(amount int64) int64 {
	if k.Credit() {
		return amount
	}
	return -amount
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// Transaction is one balance-affecting event. Amount is an unsigned
// magnitude; Type carries the sign.
type Transaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Amount    int64     `json:"amount"`
	Type      Kind      `json:"type"`
	Method    *string   `json:"method"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTransaction is the caller's intent. An empty Status means completed.
type NewTransaction struct {
	UserID int64
	Amount int64
	Type   Kind
	Method *string
	Status Status
}

// Transactions is the append-only log. Listings are in insertion order.
type Transactions interface {
	Append(ctx context.Context, t NewTransaction) (Transaction, error)
	Get(ctx context.Context, id int64) (*Transaction, error)
	ListAll(ctx context.Context) ([]Transaction, error)
	ListForUser(ctx context.Context, userID int64) ([]Transaction, error)
	ListPendingBefore(ctx context.Context, kind Kind, cutoff time.Time) ([]Transaction, error)

	// TransitionStatus moves a transaction from one status to another and
	// fails with ErrStatusConflict when it is no longer in from.
	TransitionStatus(ctx context.Context, id int64, from, to Status) (Transaction, error)
}
