package models

import "time"

type Token struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Code      string     `json:"code" gorm:"uniqueIndex;size:8;not null"`
	UserType  string     `json:"userType" gorm:"not null"`
	Price     int64      `json:"price" gorm:"not null"`
	IsUsed    bool       `json:"isUsed" gorm:"not null;index"`
	UsedByID  *uint      `json:"usedById,omitempty" gorm:"index"`
	UsedBy    *User      `json:"usedBy,omitempty" gorm:"foreignKey:UsedByID"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
}

func (t *Token) Expired(now time.Time, ttl time.Duration) bool {
	return !t.IsUsed && now.Sub(t.CreatedAt) >= ttl
}

type GenerateTokensRequest struct {
	UserType string `json:"userType" validate:"required,oneof=basic premium"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=100"`
}
