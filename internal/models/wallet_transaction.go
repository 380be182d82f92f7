package models

import (
	"time"

	"servicehub/internal/domain"
)

// WalletTransaction is one ledger line of a wallet (settlement credit or withdrawal debit).
type WalletTransaction struct {
	ID          uint                     `gorm:"primaryKey" json:"id"`
	WalletID    uint                     `gorm:"not null;index" json:"wallet_id"`
	UserID      uint                     `gorm:"not null;index" json:"user_id"`
	Type        domain.TransactionType   `gorm:"size:10;not null;index" json:"type"`
	AmountCents int64                    `gorm:"not null" json:"amount"`
	Reference   string                   `gorm:"size:128" json:"reference"`
	Status      domain.TransactionStatus `gorm:"size:20;not null" json:"status"`
	BookingID   *uint                    `gorm:"uniqueIndex" json:"booking_id,omitempty"` // one credit per booking
	CreatedAt   time.Time                `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
