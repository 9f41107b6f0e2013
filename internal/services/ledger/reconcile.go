package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

// ApproveDeposit completes a pending deposit and credits the user.
func (s *Service) ApproveDeposit(ctx context.Context, txID int64) (transactions.Transaction, error) {
	var out transactions.Transaction

	err := s.store.WithinTx(ctx, func(tx repos.Tx) error {
		t, err := pendingDeposit(ctx, tx, txID)
		if err != nil {
			return err
		}

		// Status CAS before the credit; a concurrent approval stops here.
		out, err = tx.Transactions().TransitionStatus(ctx, t.ID, transactions.StatusPending, transactions.StatusCompleted)
		if err != nil {
			return err
		}

		balance, err := tx.Users().LockAndGetBalance(ctx, t.UserID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		_, err = credit(ctx, tx, t.UserID, balance, t.Amount)
		return err
	})
	if err != nil {
		return transactions.Transaction{}, s.reject(ctx, transactions.KindDeposit, fmt.Errorf("approve deposit %d: %w", txID, err))
	}

	s.metrics.Applied(ctx, transactions.KindDeposit, out.Amount)
	log.WithFields(log.Fields{"tx_id": out.ID, "user_id": out.UserID, "amount": out.Amount}).Info("deposit approved")

	return out, nil
}

// RejectDeposit fails a pending deposit without any balance effect.
func (s *Service) RejectDeposit(ctx context.Context, txID int64) (transactions.Transaction, error) {
	var out transactions.Transaction

	err := s.store.WithinTx(ctx, func(tx repos.Tx) error {
		t, err := pendingDeposit(ctx, tx, txID)
		if err != nil {
			return err
		}

		out, err = tx.Transactions().TransitionStatus(ctx, t.ID, transactions.StatusPending, transactions.StatusFailed)
		return err
	})
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("reject deposit %d: %w", txID, err)
	}

	log.WithFields(log.Fields{"tx_id": out.ID, "user_id": out.UserID}).Info("deposit rejected")

	return out, nil
}

// ExpirePendingDeposits fails every pending deposit older than olderThan and
// returns how many it failed. Deposits settled concurrently are skipped.
func (s *Service) ExpirePendingDeposits(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	stale, err := s.store.Transactions().ListPendingBefore(ctx, transactions.KindDeposit, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale deposits: %w", err)
	}

	n := 0
	for _, t := range stale {
		_, err := s.store.Transactions().TransitionStatus(ctx, t.ID, transactions.StatusPending, transactions.StatusFailed)
		if errors.Is(err, transactions.ErrStatusConflict) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("expire deposit %d: %w", t.ID, err)
		}
		n++
	}

	return n, nil
}

func pendingDeposit(ctx context.Context, tx repos.Tx, txID int64) (*transactions.Transaction, error) {
	t, err := tx.Transactions().Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, transactions.ErrTransactionNotFound
	}
	if t.Type != transactions.KindDeposit {
		return nil, ErrNotDeposit
	}
	if t.Status != transactions.StatusPending {
		return nil, transactions.ErrStatusConflict
	}

	return t, nil
}
