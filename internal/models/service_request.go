package models

import (
	"time"

	"servicehub/internal/domain"

	"gorm.io/gorm"
)

// ServiceRequest is a client's ask for work. FixedAmountCents is set only for fixed requests and the
// bid bounds and end date only for bidding requests.
type ServiceRequest struct {
	ID                   uint                 `gorm:"primaryKey" json:"id"`
	RequesterID          uint                 `gorm:"not null;index" json:"requester_id"`
	RequesterName        string               `gorm:"size:100" json:"requester_name"`
	CategoryID           uint                 `gorm:"not null;index" json:"category_id"`
	CategoryName         string               `gorm:"size:100" json:"category_name"`
	Description          string               `gorm:"type:text;not null" json:"description"`
	RequestType          domain.RequestType   `gorm:"size:20;not null;index" json:"request_type"`
	FixedAmountCents     *int64               `json:"fixed_amount,omitempty"`
	MinBidCents          *int64               `json:"min_bid_amount,omitempty"`
	MaxBidCents          *int64               `json:"max_bid_amount,omitempty"`
	BiddingEndsAt        *time.Time           `json:"bidding_end_date,omitempty"`
	Status               domain.RequestStatus `gorm:"size:20;not null;index" json:"status"`
	AssignedProviderID   *uint                `gorm:"index" json:"assigned_provider_id,omitempty"`
	AssignedProviderName string               `gorm:"size:100" json:"assigned_provider_name,omitempty"`
	FinalAmountCents     *int64               `json:"final_amount,omitempty"`
	Images               []string             `gorm:"serializer:json;type:text" json:"images"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
	DeletedAt            gorm.DeletedAt       `gorm:"index" json:"-"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

func (r *ServiceRequest) IsAssigned() bool { return r.AssignedProviderID != nil }
