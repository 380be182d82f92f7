package models

import (
	"time"

	"servicehub/internal/domain"

	"gorm.io/gorm"
)

type Bid struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	ServiceRequestID    uint             `gorm:"not null;uniqueIndex:idx_bids_request_provider" json:"service_request_id"`
	ProviderID          uint             `gorm:"not null;uniqueIndex:idx_bids_request_provider;index" json:"provider_id"`
	ProviderName        string           `gorm:"size:100" json:"provider_name"`
	ProposedAmountCents int64            `gorm:"not null;index" json:"proposed_amount"`
	Note                string           `gorm:"type:text" json:"note"`
	EstimatedTime       string           `gorm:"size:100" json:"estimated_time"`
	Attachments         []string         `gorm:"serializer:json;type:text" json:"attachments"`
	Status              domain.BidStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	DeletedAt           gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Bid) TableName() string {
	return "bids"
}
