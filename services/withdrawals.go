package services

import (
	"context"
	"errors"
	"fmt"

	"adpay-go/database"
	"adpay-go/metrics"
	"adpay-go/models"

	log "github.com/sirupsen/logrus"
)

type Withdrawals struct {
	*base
}

// Request debits the balance and books a pending withdrawal. Preconditions
// are checked in a fixed order: bank details, tier minimum, balance, window.
func (s *Withdrawals) Request(ctx context.Context, userID uint, amount int64) (*models.Transaction, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	bank := s.revealBank(user.Bank)
	if !bank.Complete() {
		return nil, ErrMissingBankDetails
	}
	if minimum := s.rules.MinWithdrawal(user.UserType); amount < minimum {
		return nil, fmt.Errorf("%w: minimum withdrawal amount is ₦%d", ErrBelowMinimum, minimum)
	}
	if amount > user.Balance {
		return nil, ErrInsufficientBalance
	}
	if !s.rules.InPayoutWindow(user.UserType, s.now()) {
		hours := s.rules.PayoutHours(user.UserType)
		return nil, fmt.Errorf("%w: days %v, %02d:00-%02d:00", ErrOutsidePayoutWindow, s.rules.PayoutDays, hours.Start, hours.End)
	}

	snapshot := user.Bank
	txn := &models.Transaction{
		UserID:      user.ID,
		Type:        models.TxWithdrawal,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal request to %s (%s)", bank.BankName, bank.Masked()),
		Status:      models.StatusPending,
		Reference:   newReference("WD"),
		Metadata:    models.TransactionMetadata{BankDetails: &snapshot},
	}

	err = s.store.WithTx(ctx, func(tx database.Store) error {
		debited, err := tx.DebitBalance(ctx, user.ID, amount)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}
		return tx.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal("requested", amount)
	s.invalidateStats(ctx)
	log.WithFields(log.Fields{
		"user_id":   user.ID,
		"amount":    amount,
		"reference": txn.Reference,
	}).Info("Withdrawal requested")
	s.notifier.Notify(ctx, fmt.Sprintf(
		"Withdrawal request %s: ₦%d for %s (user ID %d) to %s %s.",
		txn.Reference, amount, user.FullName, user.ID, bank.BankName, bank.Masked()))

	out := s.presentTransaction(*txn)
	return &out, nil
}

func (s *Withdrawals) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	txns, _, err := s.store.ListTransactions(ctx, database.TransactionFilter{
		UserID: &userID,
		Type:   models.TxWithdrawal,
	})
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i] = s.presentTransaction(txns[i])
	}
	return txns, nil
}

// List returns withdrawals for the admin review queue, newest first.
func (s *Withdrawals) List(ctx context.Context, status string, page database.Page) ([]models.Transaction, int64, error) {
	page = page.Normalize()
	txns, total, err := s.store.ListTransactions(ctx, database.TransactionFilter{
		Type:     models.TxWithdrawal,
		Status:   status,
		Limit:    page.Limit,
		Offset:   page.Offset(),
		WithUser: true,
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range txns {
		txns[i] = s.presentTransaction(txns[i])
	}
	return txns, total, nil
}

// Complete marks a pending withdrawal as paid out.
func (s *Withdrawals) Complete(ctx context.Context, txnID uint) (*models.Transaction, error) {
	return s.settle(ctx, txnID, models.StatusCompleted, "")
}

// Reject marks a pending withdrawal failed and refunds the debited amount.
func (s *Withdrawals) Reject(ctx context.Context, txnID uint, reason string) (*models.Transaction, error) {
	return s.settle(ctx, txnID, models.StatusFailed, reason)
}

func (s *Withdrawals) settle(ctx context.Context, txnID uint, to, reason string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		var err error
		txn, err = tx.GetTransaction(ctx, txnID)
		if err != nil {
			return notFound(err, "withdrawal")
		}
		if txn.Type != models.TxWithdrawal || txn.Status != models.StatusPending {
			return ErrNotPendingWithdrawal
		}

		now := s.now()
		meta := txn.Metadata
		meta.SettledAt = &now
		meta.Reason = reason

		changed, err := tx.SetTransactionStatus(ctx, txn.ID, models.StatusPending, to, meta)
		if err != nil {
			return err
		}
		if !changed {
			return ErrNotPendingWithdrawal
		}
		txn.Status = to
		txn.Metadata = meta

		if to == models.StatusFailed {
			if err := tx.CreditBalance(ctx, txn.UserID, txn.Amount, false); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("refund owner of withdrawal %d: %w", txn.ID, ErrNotFound)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := "completed"
	if to == models.StatusFailed {
		event = "rejected"
	}
	metrics.RecordWithdrawal(event, txn.Amount)
	s.invalidateStats(ctx)
	log.WithFields(log.Fields{
		"withdrawal_id": txn.ID,
		"user_id":       txn.UserID,
		"amount":        txn.Amount,
		"status":        to,
	}).Info("Withdrawal settled")

	out := s.presentTransaction(*txn)
	return &out, nil
}
