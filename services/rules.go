package services

import (
	"slices"
	"time"

	"adpay-go/config"
	"adpay-go/models"
)

type HourRange struct {
	Start int
	End   int
}

func (h HourRange) Contains(hour int) bool {
	return hour >= h.Start && hour < h.End
}

// Rules holds the per-tier economics and the payout calendar.
type Rules struct {
	BasicDailyAdLimit    int
	BasicAdEarnings      int64
	PremiumAdEarnings    int64
	BasicReferralBonus   int64
	PremiumReferralBonus int64
	BasicMinWithdrawal   int64
	PremiumMinWithdrawal int64
	BasicTokenPrice      int64
	PremiumTokenPrice    int64
	TokenTTL             time.Duration
	PayoutDays           []int
	BasicPayoutHours     HourRange
	PremiumPayoutHours   HourRange
	Location             *time.Location
}

func DefaultRules() Rules {
	return Rules{
		BasicDailyAdLimit:    50,
		BasicAdEarnings:      15,
		PremiumAdEarnings:    20,
		BasicReferralBonus:   500,
		PremiumReferralBonus: 1000,
		BasicMinWithdrawal:   5000,
		PremiumMinWithdrawal: 10000,
		BasicTokenPrice:      3000,
		PremiumTokenPrice:    5000,
		TokenTTL:             30 * 24 * time.Hour,
		PayoutDays:           []int{5, 17},
		BasicPayoutHours:     HourRange{Start: 5, End: 8},
		PremiumPayoutHours:   HourRange{Start: 5, End: 12},
		Location:             time.UTC,
	}
}

func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		BasicDailyAdLimit:    cfg.BasicDailyAdLimit,
		BasicAdEarnings:      cfg.BasicAdEarnings,
		PremiumAdEarnings:    cfg.PremiumAdEarnings,
		BasicReferralBonus:   cfg.BasicReferralBonus,
		PremiumReferralBonus: cfg.PremiumReferralBonus,
		BasicMinWithdrawal:   cfg.BasicMinWithdrawal,
		PremiumMinWithdrawal: cfg.PremiumMinWithdrawal,
		BasicTokenPrice:      cfg.BasicTokenPrice,
		PremiumTokenPrice:    cfg.PremiumTokenPrice,
		TokenTTL:             cfg.TokenTTL,
		PayoutDays:           cfg.PayoutDays,
		BasicPayoutHours:     HourRange{Start: cfg.BasicPayoutStart, End: cfg.BasicPayoutEnd},
		PremiumPayoutHours:   HourRange{Start: cfg.PremiumPayoutStart, End: cfg.PremiumPayoutEnd},
		Location:             cfg.Location(),
	}
}

func pick[T any](tier string, basic, premium T) T {
	if tier == models.TierPremium {
		return premium
	}
	return basic
}

func (r Rules) AdEarnings(tier string) int64 {
	return pick(tier, r.BasicAdEarnings, r.PremiumAdEarnings)
}

// DailyAdLimit returns 0 for tiers without a cap.
func (r Rules) DailyAdLimit(tier string) int {
	return pick(tier, r.BasicDailyAdLimit, 0)
}

func (r Rules) ReferralBonus(tier string) int64 {
	return pick(tier, r.BasicReferralBonus, r.PremiumReferralBonus)
}

func (r Rules) MinWithdrawal(tier string) int64 {
	return pick(tier, r.BasicMinWithdrawal, r.PremiumMinWithdrawal)
}

func (r Rules) TokenPrice(tier string) int64 {
	return pick(tier, r.BasicTokenPrice, r.PremiumTokenPrice)
}

func (r Rules) PayoutHours(tier string) HourRange {
	return pick(tier, r.BasicPayoutHours, r.PremiumPayoutHours)
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Rules) InPayoutWindow(tier string, t time.Time) bool {
	local := t.In(r.location())
	return slices.Contains(r.PayoutDays, local.Day()) && r.PayoutHours(tier).Contains(local.Hour())
}

func (r Rules) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(r.location()).Date()
	by, bm, bd := b.In(r.location()).Date()
	return ay == by && am == bm && ad == bd
}

// AdsWatchedToday applies the daily reset: the stored counter only counts
// when the last ad was watched on the same local calendar day as now.
func (r Rules) AdsWatchedToday(u *models.User, now time.Time) int {
	if u.LastAdDate == nil || !r.SameDay(*u.LastAdDate, now) {
		return 0
	}
	return u.AdsWatchedToday
}

func (r Rules) LimitReached(u *models.User, now time.Time) bool {
	limit := r.DailyAdLimit(u.UserType)
	return limit > 0 && r.AdsWatchedToday(u, now) >= limit
}
