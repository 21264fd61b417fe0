package services

import (
	"context"

	"adpay-go/database"
	"adpay-go/models"

	log "github.com/sirupsen/logrus"
)

const (
	dashboardCacheKey  = "dashboard"
	recentTransactions = 10
)

type DashboardStats struct {
	TotalUsers           int64                `json:"totalUsers"`
	ActiveUsers          int64                `json:"activeUsers"`
	PendingUsers         int64                `json:"pendingUsers"`
	BasicUsers           int64                `json:"basicUsers"`
	PremiumUsers         int64                `json:"premiumUsers"`
	TotalRevenue         int64                `json:"totalRevenue"`
	TotalPayouts         int64                `json:"totalPayouts"`
	TotalReferralBonuses int64                `json:"totalReferralBonuses"`
	RecentTransactions   []models.Transaction `json:"recentTransactions"`
}

type PendingUser struct {
	*models.User
	RegistrationToken *models.Token `json:"registrationToken"`
}

type Reporting struct {
	*base
}

// Dashboard aggregates user counts and completed-transaction sums. Results
// are served from the cache when one is configured.
func (s *Reporting) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		found, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err != nil {
			log.WithError(err).Warn("Dashboard cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	active, inactive := true, false
	stats := &DashboardStats{}

	counts := []struct {
		dst    *int64
		filter database.UserFilter
	}{
		{&stats.TotalUsers, database.UserFilter{}},
		{&stats.ActiveUsers, database.UserFilter{Active: &active}},
		{&stats.PendingUsers, database.UserFilter{Active: &inactive}},
		{&stats.BasicUsers, database.UserFilter{Active: &active, UserType: models.TierBasic}},
		{&stats.PremiumUsers, database.UserFilter{Active: &active, UserType: models.TierPremium}},
	}
	for _, c := range counts {
		n, err := s.store.CountUsers(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	sums := []struct {
		dst    *int64
		txType string
	}{
		{&stats.TotalRevenue, models.TxRegistration},
		{&stats.TotalPayouts, models.TxWithdrawal},
		{&stats.TotalReferralBonuses, models.TxReferralBonus},
	}
	for _, sm := range sums {
		n, err := s.store.SumTransactions(ctx, sm.txType, models.StatusCompleted)
		if err != nil {
			return nil, err
		}
		*sm.dst = n
	}

	recent, _, err := s.store.ListTransactions(ctx, database.TransactionFilter{
		Limit:    recentTransactions,
		WithUser: true,
	})
	if err != nil {
		return nil, err
	}
	// The dashboard may be cached, so it never carries bank details.
	for i := range recent {
		recent[i].Metadata.BankDetails = nil
		if recent[i].User != nil {
			recent[i].User.Bank = models.BankAccount{}
		}
	}
	stats.RecentTransactions = recent

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
			log.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	return stats, nil
}

func (s *Reporting) Users(ctx context.Context, filter database.UserFilter) ([]*models.User, int64, error) {
	users, total, err := s.store.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*models.User, len(users))
	for i := range users {
		out[i] = s.present(&users[i])
	}
	return out, total, nil
}

// PendingUsers lists inactive accounts with the token they registered with,
// which tells the admin how much payment to expect.
func (s *Reporting) PendingUsers(ctx context.Context, page database.Page) ([]PendingUser, int64, error) {
	inactive := false
	users, total, err := s.store.ListUsers(ctx, database.UserFilter{Active: &inactive, Page: page})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	tokens, err := s.store.TokensForUsers(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byUser := make(map[uint]*models.Token, len(tokens))
	for i := range tokens {
		if tokens[i].UsedByID != nil {
			byUser[*tokens[i].UsedByID] = &tokens[i]
		}
	}

	out := make([]PendingUser, len(users))
	for i := range users {
		out[i] = PendingUser{User: s.present(&users[i]), RegistrationToken: byUser[users[i].ID]}
	}
	return out, total, nil
}

func (s *Reporting) AuditLogs(ctx context.Context, page database.Page) ([]models.AuditLog, int64, error) {
	return s.store.ListAuditLogs(ctx, page)
}

// Audit records an action. Failures are logged, not returned.
func (s *Reporting) Audit(ctx context.Context, entry *models.AuditLog) {
	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		log.WithError(err).WithField("action", entry.Action).Error("Failed to write audit log")
	}
}
