package services

import (
	"context"
	"errors"
	"math/rand"

	"adpay-go/database"
	"adpay-go/metrics"
	"adpay-go/models"

	log "github.com/sirupsen/logrus"
)

type Ad struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Duration    int    `json:"duration"`
	Category    string `json:"category"`
}

var DefaultCatalog = []Ad{
	{
		ID:          "ad_001",
		Title:       "Amazing Product Launch",
		Description: "Discover our revolutionary new product that will change your life!",
		ImageURL:    "https://via.placeholder.com/300x200/333/FFD700?text=Product+Ad",
		Duration:    30,
		Category:    "Technology",
	},
	{
		ID:          "ad_002",
		Title:       "Summer Sale - 50% Off",
		Description: "Don't miss our biggest sale of the year! Limited time offer.",
		ImageURL:    "https://via.placeholder.com/300x200/333/FFD700?text=Summer+Sale",
		Duration:    30,
		Category:    "Shopping",
	},
	{
		ID:          "ad_003",
		Title:       "New Mobile App",
		Description: "Download our new app and get exclusive rewards and features.",
		ImageURL:    "https://via.placeholder.com/300x200/333/FFD700?text=Mobile+App",
		Duration:    30,
		Category:    "Technology",
	},
	{
		ID:          "ad_004",
		Title:       "Travel Destination",
		Description: "Explore beautiful destinations around the world with special deals.",
		ImageURL:    "https://via.placeholder.com/300x200/333/FFD700?text=Travel+Ad",
		Duration:    30,
		Category:    "Travel",
	},
	{
		ID:          "ad_005",
		Title:       "Fitness Program",
		Description: "Transform your body with our 30-day fitness challenge.",
		ImageURL:    "https://via.placeholder.com/300x200/333/FFD700?text=Fitness+Ad",
		Duration:    30,
		Category:    "Health",
	},
}

type AdOffer struct {
	Ad
	Earnings        int64 `json:"earnings"`
	AdsWatchedToday int   `json:"adsWatchedToday"`
	AdLimit         any   `json:"adLimit"`
}

type AdCompletion struct {
	AdID            string `json:"adId"`
	Earnings        int64  `json:"earnings"`
	Balance         int64  `json:"balance"`
	AdsWatchedToday int    `json:"adsWatchedToday"`
	Reference       string `json:"reference"`
}

type Ads struct {
	*base
	catalog []Ad
	pick    func(n int) int
}

func randomIndex(n int) int {
	return rand.Intn(n)
}

func (s *Ads) lookup(id string) (Ad, bool) {
	for _, ad := range s.catalog {
		if ad.ID == id {
			return ad, true
		}
	}
	return Ad{}, false
}

// LoadAd offers a random ad with the caller's earnings rate. It is advisory
// and does not touch the watched counter.
func (s *Ads) LoadAd(ctx context.Context, userID uint) (*AdOffer, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	now := s.now()
	if s.rules.LimitReached(user, now) {
		return nil, ErrDailyLimitReached
	}

	offer := &AdOffer{
		Ad:              s.catalog[s.pick(len(s.catalog))],
		Earnings:        s.rules.AdEarnings(user.UserType),
		AdsWatchedToday: s.rules.AdsWatchedToday(user, now),
		AdLimit:         "Unlimited",
	}
	if limit := s.rules.DailyAdLimit(user.UserType); limit > 0 {
		offer.AdLimit = limit
	}
	return offer, nil
}

// CompleteAd credits one ad view. The cap is re-checked here and the user row
// is updated with a version compare-and-set, so concurrent completions can
// never exceed the daily limit or lose an increment.
func (s *Ads) CompleteAd(ctx context.Context, userID uint, adID string) (*AdCompletion, error) {
	if _, ok := s.lookup(adID); !ok {
		return nil, ErrUnknownAd
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		var result *AdCompletion
		var tier string
		err := s.store.WithTx(ctx, func(tx database.Store) error {
			user, err := tx.GetUser(ctx, userID)
			if err != nil {
				return notFound(err, "user")
			}
			if !user.IsActive {
				return ErrAccountInactive
			}

			now := s.now()
			if s.rules.LimitReached(user, now) {
				return ErrDailyLimitReached
			}

			watched := s.rules.AdsWatchedToday(user, now) + 1
			earnings := s.rules.AdEarnings(user.UserType)
			applied, err := tx.RecordAdView(ctx, user.ID, user.Version, watched, earnings, now)
			if err != nil {
				return err
			}
			if !applied {
				return errStaleVersion
			}

			ref := newReference("AD")
			err = tx.CreateTransaction(ctx, &models.Transaction{
				UserID:      user.ID,
				Type:        models.TxAdView,
				Amount:      earnings,
				Description: "Earnings from watching ad",
				Status:      models.StatusCompleted,
				Reference:   ref,
				Metadata:    models.TransactionMetadata{AdID: adID},
			})
			if err != nil {
				return err
			}

			tier = user.UserType
			result = &AdCompletion{
				AdID:            adID,
				Earnings:        earnings,
				Balance:         user.Balance + earnings,
				AdsWatchedToday: watched,
				Reference:       ref,
			}
			return nil
		})
		if errors.Is(err, errStaleVersion) {
			log.WithFields(log.Fields{"user_id": userID, "attempt": attempt + 1}).Debug("Ad completion lost a race, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.RecordAdView(tier, result.Earnings)
		return result, nil
	}
	return nil, ErrConcurrentUpdate
}
