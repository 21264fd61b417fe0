package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TierBasic   = "basic"
	TierPremium = "premium"
)

type User struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null"`
	Phone            string         `json:"phone" gorm:"uniqueIndex;not null"`
	Password         string         `json:"-" gorm:"not null"`
	FullName         string         `json:"fullName" gorm:"not null"`
	UserType         string         `json:"userType" gorm:"not null;index"` // basic, premium
	ReferralCode     string         `json:"referralCode" gorm:"uniqueIndex;size:6;not null"`
	ReferredByID     *uint          `json:"referredBy,omitempty" gorm:"index"`
	ReferredBy       *User          `json:"-" gorm:"foreignKey:ReferredByID"`
	Balance          int64          `json:"balance" gorm:"not null;default:0"`
	TotalEarned      int64          `json:"totalEarned" gorm:"not null;default:0"`
	AdsWatchedToday  int            `json:"adsWatchedToday" gorm:"not null;default:0"`
	LastAdDate       *time.Time     `json:"lastAdDate"`
	IsActive         bool           `json:"isActive" gorm:"not null;index"`
	Bank             BankAccount    `json:"bankAccount" gorm:"embedded;embeddedPrefix:bank_"`
	Version          int64          `json:"-" gorm:"not null;default:0"`
	RegistrationDate time.Time      `json:"registrationDate"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) IsPremium() bool {
	return u.UserType == TierPremium
}

func ValidTier(t string) bool {
	return t == TierBasic || t == TierPremium
}

type RegisterRequest struct {
	FullName     string `json:"fullName" validate:"required,min=2"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone"`
	Password     string `json:"password" validate:"required,min=6"`
	UserType     string `json:"userType" validate:"required,oneof=basic premium"`
	TokenCode    string `json:"tokenCode" validate:"required"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
