package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adpay-go/database"
	"adpay-go/metrics"
	"adpay-go/models"
	"adpay-go/utils"

	log "github.com/sirupsen/logrus"
)

type RegistrationResult struct {
	User                *Profile `json:"user"`
	Token               string   `json:"token"`
	PaymentInstructions string   `json:"paymentInstructions"`
}

type ActivationResult struct {
	User          *models.User `json:"user"`
	ReferralBonus int64        `json:"referralBonus"`
	ReferrerID    *uint        `json:"referrerId,omitempty"`
}

type Registration struct {
	*base
	tokens *utils.TokenManager
}

// Register creates an inactive account and consumes the registration token.
// Exactly one of several concurrent registrations with the same token wins.
func (s *Registration) Register(ctx context.Context, req models.RegisterRequest) (*RegistrationResult, error) {
	if !models.ValidTier(req.UserType) {
		return nil, ErrInvalidTier
	}
	email := utils.NormalizeEmail(req.Email)
	phone := strings.TrimSpace(req.Phone)
	tokenCode := strings.ToUpper(strings.TrimSpace(req.TokenCode))
	referralCode := strings.ToUpper(strings.TrimSpace(req.ReferralCode))

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		user  *models.User
		token *models.Token
	)
	err = s.store.WithTx(ctx, func(tx database.Store) error {
		taken, err := tx.IdentityTaken(ctx, email, phone)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateIdentity
		}

		token, err = tx.GetTokenByCode(ctx, tokenCode)
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		now := s.now()
		if token.IsUsed || token.Expired(now, s.rules.TokenTTL) {
			return ErrInvalidToken
		}
		if token.UserType != req.UserType {
			return fmt.Errorf("%w: token is for %s users only", ErrTokenTypeMismatch, token.UserType)
		}

		var referrerID *uint
		if referralCode != "" {
			referrer, err := tx.GetUserByReferralCode(ctx, referralCode)
			if errors.Is(err, database.ErrNotFound) {
				return ErrInvalidReferralCode
			}
			if err != nil {
				return err
			}
			referrerID = &referrer.ID
		}

		code, err := utils.UniqueCode(ctx, referralCodeLength, codeAttempts, tx.ReferralCodeExists)
		if err != nil {
			return err
		}

		user = &models.User{
			Email:            email,
			Phone:            phone,
			Password:         hash,
			FullName:         strings.TrimSpace(req.FullName),
			UserType:         req.UserType,
			ReferralCode:     code,
			ReferredByID:     referrerID,
			RegistrationDate: now,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, database.ErrAlreadyExists) {
				return ErrDuplicateIdentity
			}
			return err
		}

		consumed, err := tx.ConsumeToken(ctx, token.ID, user.ID, now)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	authToken, err := s.tokens.Generate(user.ID, user.Email, utils.RoleUser)
	if err != nil {
		return nil, err
	}

	metrics.RecordRegistration(user.UserType)
	s.invalidateStats(ctx)
	log.WithFields(log.Fields{
		"user_id": user.ID,
		"tier":    user.UserType,
		"token":   token.Code,
	}).Info("User registered, awaiting activation")
	s.notifier.Notify(ctx, fmt.Sprintf(
		"New %s registration: %s (%s), user ID %d, token %s. Awaiting payment of ₦%d.",
		user.UserType, user.FullName, user.Email, user.ID, token.Code, token.Price))

	return &RegistrationResult{
		User:                s.profile(user),
		Token:               authToken,
		PaymentInstructions: fmt.Sprintf("Please pay ₦%d to admin and share your user ID: %d", token.Price, user.ID),
	}, nil
}

// Activate unlocks an account, books the registration fee and pays the
// referrer's bonus as one unit. A second call fails with ErrAlreadyActive.
func (s *Registration) Activate(ctx context.Context, userID uint) (*ActivationResult, error) {
	result := &ActivationResult{}
	err := s.store.WithTx(ctx, func(tx database.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return notFound(err, "user")
		}
		if user.IsActive {
			return ErrAlreadyActive
		}

		token, err := tx.GetTokenByUser(ctx, user.ID)
		if errors.Is(err, database.ErrNotFound) {
			return ErrNoRegistrationToken
		}
		if err != nil {
			return err
		}

		activated, err := tx.ActivateUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if !activated {
			return ErrAlreadyActive
		}
		user.IsActive = true

		err = tx.CreateTransaction(ctx, &models.Transaction{
			UserID:      user.ID,
			Type:        models.TxRegistration,
			Amount:      token.Price,
			Description: fmt.Sprintf("%s registration fee", user.UserType),
			Status:      models.StatusCompleted,
			Reference:   newReference("REG"),
			Metadata:    models.TransactionMetadata{TokenCode: token.Code},
		})
		if err != nil {
			return err
		}
		result.User = user

		if user.ReferredByID == nil {
			return nil
		}
		referrer, err := tx.GetUser(ctx, *user.ReferredByID)
		if errors.Is(err, database.ErrNotFound) {
			log.WithField("user_id", user.ID).Warn("Referrer no longer exists, skipping bonus")
			return nil
		}
		if err != nil {
			return err
		}

		bonus := s.rules.ReferralBonus(user.UserType)
		if err := tx.CreditBalance(ctx, referrer.ID, bonus, false); err != nil {
			return err
		}
		referredID := user.ID
		err = tx.CreateTransaction(ctx, &models.Transaction{
			UserID:      referrer.ID,
			Type:        models.TxReferralBonus,
			Amount:      bonus,
			Description: fmt.Sprintf("Referral bonus for %s user %s", user.UserType, user.FullName),
			Status:      models.StatusCompleted,
			Reference:   newReference("REF"),
			Metadata:    models.TransactionMetadata{ReferredUserID: &referredID},
		})
		if err != nil {
			return err
		}
		result.ReferralBonus = bonus
		result.ReferrerID = &referrer.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordActivation(result.User.UserType)
	s.invalidateStats(ctx)
	log.WithFields(log.Fields{
		"user_id":        result.User.ID,
		"referral_bonus": result.ReferralBonus,
	}).Info("User activated")

	result.User = s.present(result.User)
	return result, nil
}
