package services

import (
	"context"
	"strings"
	"time"

	"adpay-go/database"
	"adpay-go/models"

	log "github.com/sirupsen/logrus"
)

const transactionHistoryLimit = 50

type ReferralSummary struct {
	ID               uint      `json:"id"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email"`
	UserType         string    `json:"userType"`
	IsActive         bool      `json:"isActive"`
	RegistrationDate time.Time `json:"registrationDate"`
}

type ReferralStats struct {
	ReferralCode     string            `json:"referralCode"`
	TotalReferrals   int               `json:"totalReferrals"`
	ActiveReferrals  int               `json:"activeReferrals"`
	BasicReferrals   int               `json:"basicReferrals"`
	PremiumReferrals int               `json:"premiumReferrals"`
	PotentialBonus   int64             `json:"potentialBonus"`
	ActualBonus      int64             `json:"actualBonus"`
	Referrals        []ReferralSummary `json:"referrals"`
}

type Accounts struct {
	*base
}

func (s *Accounts) UpdateBankDetails(ctx context.Context, userID uint, req models.BankDetailsRequest) (*models.BankAccount, error) {
	bank := models.BankAccount{
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		AccountName:   strings.TrimSpace(req.AccountName),
	}

	sealed, err := s.sealBank(bank)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateBankAccount(ctx, userID, sealed); err != nil {
		return nil, notFound(err, "user")
	}

	log.WithField("user_id", userID).Info("Bank details updated")
	return &bank, nil
}

// Transactions returns the caller's most recent ledger entries.
func (s *Accounts) Transactions(ctx context.Context, userID uint) ([]models.Transaction, error) {
	txns, _, err := s.store.ListTransactions(ctx, database.TransactionFilter{
		UserID: &userID,
		Limit:  transactionHistoryLimit,
	})
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i] = s.presentTransaction(txns[i])
	}
	return txns, nil
}

// Referrals summarizes the accounts registered with the caller's code.
// PotentialBonus counts every referral, ActualBonus only activated ones.
func (s *Accounts) Referrals(ctx context.Context, userID uint) (*ReferralStats, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	referrals, err := s.store.ListReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ReferralStats{
		ReferralCode:   user.ReferralCode,
		TotalReferrals: len(referrals),
		Referrals:      make([]ReferralSummary, 0, len(referrals)),
	}
	for _, r := range referrals {
		bonus := s.rules.ReferralBonus(r.UserType)
		stats.PotentialBonus += bonus
		if r.IsPremium() {
			stats.PremiumReferrals++
		} else {
			stats.BasicReferrals++
		}
		if r.IsActive {
			stats.ActiveReferrals++
			stats.ActualBonus += bonus
		}
		stats.Referrals = append(stats.Referrals, ReferralSummary{
			ID:               r.ID,
			FullName:         r.FullName,
			Email:            r.Email,
			UserType:         r.UserType,
			IsActive:         r.IsActive,
			RegistrationDate: r.RegistrationDate,
		})
	}
	return stats, nil
}
