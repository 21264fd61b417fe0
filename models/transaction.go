package models

import "time"

const (
	TxAdView        = "ad_view"
	TxReferralBonus = "referral_bonus"
	TxWithdrawal    = "withdrawal"
	TxRegistration  = "registration"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Transaction struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	UserID      uint                `json:"userId" gorm:"not null;index"`
	User        *User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Type        string              `json:"type" gorm:"not null;index"` // ad_view, referral_bonus, withdrawal, registration
	Amount      int64               `json:"amount" gorm:"not null"`
	Description string              `json:"description"`
	Status      string              `json:"status" gorm:"not null;index"` // pending, completed, failed
	Reference   string              `json:"reference" gorm:"uniqueIndex;not null"`
	Metadata    TransactionMetadata `json:"metadata" gorm:"serializer:json"`
	CreatedAt   time.Time           `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type TransactionMetadata struct {
	AdID           string       `json:"adId,omitempty"`
	ReferredUserID *uint        `json:"referredUser,omitempty"`
	BankDetails    *BankAccount `json:"bankDetails,omitempty"`
	TokenCode      string       `json:"token,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	SettledAt      *time.Time   `json:"settledAt,omitempty"`
}

type CompleteAdRequest struct {
	AdID string `json:"adId" validate:"required"`
}

type WithdrawalRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type RejectWithdrawalRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}
