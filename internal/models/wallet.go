package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet belongs to a provider. Balance only grows through booking settlement and only shrinks
// through withdrawal; TotalEarned never decreases.
type Wallet struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceCents     int64          `gorm:"not null;default:0" json:"balance"`
	HeldBalanceCents int64          `gorm:"not null;default:0" json:"held_balance"`
	TotalEarnedCents int64          `gorm:"not null;default:0" json:"total_earned"`
	Currency         string         `gorm:"size:3;default:'KES'" json:"currency"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
