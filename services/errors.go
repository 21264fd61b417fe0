package services

import (
	"errors"
	"fmt"

	"adpay-go/utils"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account not active, please contact admin after making payment")
	ErrInvalidTier        = errors.New("user type must be basic or premium")
	ErrCodeSpaceExhausted = utils.ErrCodeSpaceExhausted
	ErrInvalidQuantity    = fmt.Errorf("quantity must be between 1 and %d", maxTokenBatch)

	// Registration and activation.
	ErrDuplicateIdentity   = errors.New("user with this email or phone already exists")
	ErrInvalidToken        = errors.New("invalid or already used registration token")
	ErrTokenTypeMismatch   = errors.New("registration token is for a different user type")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrAlreadyActive       = errors.New("user is already active")
	ErrNoRegistrationToken = errors.New("no registration token found for this user")

	// Ads.
	ErrDailyLimitReached = errors.New("daily ad limit reached, upgrade to premium for unlimited ads")
	ErrUnknownAd         = errors.New("unknown ad")
	ErrConcurrentUpdate  = errors.New("account was updated concurrently, please retry")

	// Withdrawals.
	ErrMissingBankDetails   = errors.New("please add your bank details before requesting withdrawal")
	ErrBelowMinimum         = errors.New("amount is below the minimum withdrawal")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrOutsidePayoutWindow  = errors.New("withdrawals are only processed on payment days within payout hours")
	ErrNotPendingWithdrawal = errors.New("transaction is not a pending withdrawal")
)

// errStaleVersion signals a lost compare-and-set; callers retry.
var errStaleVersion = errors.New("stale user version")
