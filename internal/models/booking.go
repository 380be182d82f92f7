package models

import (
	"time"

	"servicehub/internal/domain"
)

type Booking struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	ServiceRequestID    uint                 `gorm:"uniqueIndex;not null" json:"service_request_id"`
	BidID               *uint                `gorm:"uniqueIndex" json:"bid_id"` // nil for fixed-price acceptance
	UserID              uint                 `gorm:"not null;index" json:"user_id"`
	UserName            string               `gorm:"size:100" json:"user_name"`
	ProviderID          uint                 `gorm:"not null;index" json:"provider_id"`
	ProviderName        string               `gorm:"size:100" json:"provider_name"`
	AgreedPriceCents    int64                `gorm:"not null" json:"agreed_price"`
	Status              domain.BookingStatus `gorm:"size:20;not null;index" json:"status"`
	CompletedByProvider bool                 `gorm:"not null;default:false" json:"completed_by_provider"`
	CompletedByUser     bool                 `gorm:"not null;default:false" json:"completed_by_user"`
	UserRating          *int                 `json:"user_rating,omitempty"`
	UserReview          string               `gorm:"type:text" json:"user_review,omitempty"`
	IsPaid              bool                 `gorm:"not null;default:false" json:"is_paid"`
	PaymentReference    string               `gorm:"size:128" json:"payment_reference,omitempty"`
	DisputeReason       string               `gorm:"type:text" json:"dispute_reason,omitempty"`
	StartedAt           *time.Time           `json:"started_at,omitempty"`
	ProviderCompletedAt *time.Time           `json:"provider_completed_at,omitempty"`
	ReleasedAt          *time.Time           `json:"released_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsParty reports whether userID is the booking's client or provider.
func (b *Booking) IsParty(userID uint) bool {
	return userID == b.UserID || userID == b.ProviderID
}

// SenderRole returns the side userID is on; ok is false for outsiders.
func (b *Booking) SenderRole(userID uint) (domain.SenderRole, bool) {
	switch userID {
	case b.UserID:
		return domain.SenderUser, true
	case b.ProviderID:
		return domain.SenderProvider, true
	}
	return "", false
}

// BookingMessage is append-only; rows are never edited or removed.
type BookingMessage struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	BookingID  uint              `gorm:"not null;index" json:"booking_id"`
	SenderID   uint              `gorm:"not null" json:"sender_id"`
	SenderRole domain.SenderRole `gorm:"size:20;not null" json:"sender_role"`
	Text       string            `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (BookingMessage) TableName() string {
	return "booking_messages"
}
