package models

import (
	"time"

	"gorm.io/gorm"
)

// Provider is the public profile of a PROVIDER account. Bids and bookings reference the provider
// by its user id.
type Provider struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName string         `gorm:"size:100;not null" json:"display_name"`
	Bio         string         `gorm:"type:text" json:"bio"`
	CategoryID  *uint          `gorm:"index" json:"category_id"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	RatingSum   int64          `gorm:"not null;default:0" json:"-"`
	RatingCount int64          `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Provider) TableName() string {
	return "providers"
}

// AverageRating is 0 until the first rated booking.
func (p *Provider) AverageRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	return float64(p.RatingSum) / float64(p.RatingCount)
}
