package services

import (
	"context"
	"time"

	"adpay-go/database"
	"adpay-go/metrics"
	"adpay-go/models"
	"adpay-go/utils"

	log "github.com/sirupsen/logrus"
)

const maxTokenBatch = 100

type Tokens struct {
	*base
}

// Generate creates quantity single-use registration tokens for tier.
func (s *Tokens) Generate(ctx context.Context, tier string, quantity int) ([]models.Token, error) {
	if !models.ValidTier(tier) {
		return nil, ErrInvalidTier
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > maxTokenBatch {
		return nil, ErrInvalidQuantity
	}

	price := s.rules.TokenPrice(tier)
	tokens := make([]models.Token, 0, quantity)
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		seen := make(map[string]bool, quantity)
		exists := func(ctx context.Context, code string) (bool, error) {
			if seen[code] {
				return true, nil
			}
			return tx.TokenCodeExists(ctx, code)
		}
		for i := 0; i < quantity; i++ {
			code, err := utils.UniqueCode(ctx, tokenCodeLength, codeAttempts, exists)
			if err != nil {
				return err
			}
			seen[code] = true
			tokens = append(tokens, models.Token{Code: code, UserType: tier, Price: price})
		}
		return tx.CreateTokens(ctx, tokens)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTokensGenerated(tier, len(tokens))
	log.WithFields(log.Fields{"tier": tier, "quantity": len(tokens)}).Info("Registration tokens generated")
	return tokens, nil
}

func (s *Tokens) List(ctx context.Context, used *bool, page database.Page) ([]models.Token, int64, error) {
	tokens, total, err := s.store.ListTokens(ctx, database.TokenFilter{Used: used, Page: page})
	if err != nil {
		return nil, 0, err
	}
	for i := range tokens {
		tokens[i].UsedBy = s.present(tokens[i].UsedBy)
	}
	return tokens, total, nil
}

// PurgeExpired deletes unused tokens older than the configured TTL.
func (s *Tokens) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.rules.TokenTTL)
	n, err := s.store.PurgeExpiredTokens(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.RecordTokensPurged(n)
	if n > 0 {
		log.WithFields(log.Fields{"purged": n, "cutoff": cutoff.Format(time.RFC3339)}).Info("Expired registration tokens purged")
	}
	return n, nil
}
