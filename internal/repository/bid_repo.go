package repository

import (
	"servicehub/internal/domain"
	"servicehub/internal/models"

	"gorm.io/gorm"
)

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) WithTx(tx *gorm.DB) *BidRepository {
	return &BidRepository{db: tx}
}

func (r *BidRepository) Create(b *models.Bid) error {
	return r.db.Create(b).Error
}

func (r *BidRepository) GetByID(id uint) (*models.Bid, error) {
	var b models.Bid
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BidRepository) ExistsForProvider(requestID, providerID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.Bid{}).
		Where("service_request_id = ? AND provider_id = ?", requestID, providerID).
		Count(&c).Error
	return c > 0, err
}

// ListByRequest returns the request's bids, lowest amount first, ties in creation order.
func (r *BidRepository) ListByRequest(requestID uint) ([]models.Bid, error) {
	var list []models.Bid
	err := r.db.Where("service_request_id = ?", requestID).
		Order("proposed_amount_cents ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *BidRepository) ListByProvider(providerID uint, limit, offset int) ([]models.Bid, error) {
	var list []models.Bid
	err := r.db.Where("provider_id = ?", providerID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *BidRepository) ListPendingByRequest(requestID uint) ([]models.Bid, error) {
	var list []models.Bid
	err := r.db.Where("service_request_id = ? AND status = ?", requestID, domain.BidStatusPending).
		Order("id ASC").Find(&list).Error
	return list, err
}

func (r *BidRepository) MarkAccepted(id uint) error {
	return r.db.Model(&models.Bid{}).Where("id = ?", id).
		Update("status", domain.BidStatusAccepted).Error
}

// RejectOtherPending rejects every pending bid on the request except exceptBidID.
// Pass 0 to reject all of them.
func (r *BidRepository) RejectOtherPending(requestID, exceptBidID uint) error {
	return r.db.Model(&models.Bid{}).
		Where("service_request_id = ? AND status = ? AND id <> ?", requestID, domain.BidStatusPending, exceptBidID).
		Update("status", domain.BidStatusRejected).Error
}
