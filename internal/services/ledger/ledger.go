package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/config"
	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

// Service is the only writer of user balances.
type Service struct {
	store   repos.Store
	cfg     config.LedgerConfig
	metrics Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store repos.Store, cfg config.LedgerConfig, opts ...Option) *Service {
	s := &Service{
		store:   store,
		cfg:     cfg,
		metrics: noopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ApplyGameResult credits a win or debits a loss and returns the new balance.
func (s *Service) ApplyGameResult(ctx context.Context, actor *auth.Actor, res GameResult) (int64, error) {
	kind := res.Kind()

	if actor == nil {
		return 0, s.reject(ctx, kind, ErrUnauthenticated)
	}
	if res.Amount <= 0 {
		return 0, s.reject(ctx, kind, ErrInvalidAmount)
	}

	var balance int64
	err := s.store.WithinTx(ctx, func(tx repos.Tx) error {
		var err error
		_, balance, err = s.apply(ctx, tx, actor.UserID, kind, res.Amount, nil)
		return err
	})
	if err != nil {
		return 0, s.reject(ctx, kind, fmt.Errorf("apply game result: %w", err))
	}

	s.metrics.Applied(ctx, kind, res.Amount)

	return balance, nil
}

// CreateTransaction records a deposit, withdrawal, win or loss for the actor.
// A pending deposit is stored without touching the balance until it is
// approved.
func (s *Service) CreateTransaction(ctx context.Context, actor *auth.Actor, req Request) (transactions.Transaction, error) {
	if actor == nil {
		return transactions.Transaction{}, s.reject(ctx, req.Type, ErrUnauthenticated)
	}

	err := s.validate(&req)
	if err != nil {
		return transactions.Transaction{}, s.reject(ctx, req.Type, err)
	}

	if req.Status == transactions.StatusPending {
		t, err := s.store.Transactions().Append(ctx, transactions.NewTransaction{
			UserID: actor.UserID,
			Amount: req.Amount,
			Type:   req.Type,
			Method: req.Method,
			Status: transactions.StatusPending,
		})
		if err != nil {
			return transactions.Transaction{}, s.reject(ctx, req.Type, fmt.Errorf("record pending deposit: %w", err))
		}

		log.WithFields(log.Fields{"user_id": actor.UserID, "tx_id": t.ID, "amount": t.Amount}).Info("deposit pending")

		return t, nil
	}

	var out transactions.Transaction
	err = s.store.WithinTx(ctx, func(tx repos.Tx) error {
		var err error
		out, _, err = s.apply(ctx, tx, actor.UserID, req.Type, req.Amount, req.Method)
		return err
	})
	if err != nil {
		return transactions.Transaction{}, s.reject(ctx, req.Type, fmt.Errorf("create transaction: %w", err))
	}

	s.metrics.Applied(ctx, req.Type, req.Amount)

	return out, nil
}

func (s *Service) validate(req *Request) error {
	if !req.Type.Valid() {
		return ErrInvalidType
	}
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}

	if req.Method != nil {
		m := strings.TrimSpace(*req.Method)
		if len(m) > maxMethodLen {
			return validation.Field("method", fmt.Sprintf("must be at most %d characters", maxMethodLen))
		}
		req.Method = &m
	}

	switch req.Status {
	case "":
		req.Status = transactions.StatusCompleted
	case transactions.StatusCompleted:
	case transactions.StatusPending:
		if req.Type != transactions.KindDeposit {
			return ErrInvalidStatus
		}
	default:
		return ErrInvalidStatus
	}

	if req.Type == transactions.KindDeposit && (req.Amount < s.cfg.DepositMin || req.Amount > s.cfg.DepositMax) {
		return &AmountRangeError{Amount: req.Amount, Min: s.cfg.DepositMin, Max: s.cfg.DepositMax}
	}

	return nil
}

// apply runs inside a unit of work:
//
// 1) Lock the user's balance.
// 2) Credit, or check and debit.
// 3) Append the completed transaction.
func (s *Service) apply(
	ctx context.Context,
	tx repos.Tx,
	userID int64,
	kind transactions.Kind,
	amount int64,
	method *string,
) (transactions.Transaction, int64, error) {
	balance, err := tx.Users().LockAndGetBalance(ctx, userID)
	if err != nil {
		return transactions.Transaction{}, 0, fmt.Errorf("lock and get balance: %w", err)
	}

	if kind.Credit() {
		balance, err = credit(ctx, tx, userID, balance, amount)
		if err != nil {
			return transactions.Transaction{}, 0, err
		}
	} else {
		if balance < amount {
			return transactions.Transaction{}, 0, ErrInsufficientBalance
		}

		balance, err = tx.Users().DecreaseBalance(ctx, userID, amount)
		if errors.Is(err, users.ErrInsufficientFunds) {
			return transactions.Transaction{}, 0, ErrInsufficientBalance
		}
		if err != nil {
			return transactions.Transaction{}, 0, fmt.Errorf("decrease balance: %w", err)
		}
	}

	t, err := tx.Transactions().Append(ctx, transactions.NewTransaction{
		UserID: userID,
		Amount: amount,
		Type:   kind,
		Method: method,
		Status: transactions.StatusCompleted,
	})
	if err != nil {
		return transactions.Transaction{}, 0, fmt.Errorf("append transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"tx_id":   t.ID,
		"type":    kind,
		"amount":  amount,
		"balance": balance,
	}).Debug("ledger applied")

	return t, balance, nil
}

// credit adds amount to a balance already read under lock.
func credit(ctx context.Context, tx repos.Tx, userID, locked, amount int64) (int64, error) {
	if locked > math.MaxInt64-amount {
		return 0, ErrBalanceLimit
	}

	balance, err := tx.Users().IncreaseBalance(ctx, userID, amount)
	if errors.Is(err, users.ErrBalanceOverflow) {
		return 0, ErrBalanceLimit
	}
	if err != nil {
		return 0, fmt.Errorf("increase balance: %w", err)
	}

	return balance, nil
}

func (s *Service) reject(ctx context.Context, kind transactions.Kind, err error) error {
	s.metrics.Rejected(ctx, kind, rejectReason(err))
	return err
}

// Balance reads the stored balance without locking.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	u, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	if u == nil {
		return 0, users.ErrUserNotFound
	}

	return u.Balance, nil
}

func (s *Service) History(ctx context.Context, actor *auth.Actor) ([]transactions.Transaction, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	return s.store.Transactions().ListForUser(ctx, actor.UserID)
}

func (s *Service) All(ctx context.Context) ([]transactions.Transaction, error) {
	return s.store.Transactions().ListAll(ctx)
}
