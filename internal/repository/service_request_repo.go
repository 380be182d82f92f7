package repository

import (
	"servicehub/internal/domain"
	"servicehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceRequestFilter struct {
	RequesterID *uint
	CategoryID  *uint
	Status      domain.RequestStatus
	RequestType domain.RequestType
	Limit       int
	Offset      int
}

type ServiceRequestRepository struct {
	db *gorm.DB
}

func NewServiceRequestRepository(db *gorm.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

func (r *ServiceRequestRepository) WithTx(tx *gorm.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: tx}
}

func (r *ServiceRequestRepository) Create(req *models.ServiceRequest) error {
	return r.db.Create(req).Error
}

func (r *ServiceRequestRepository) GetByID(id uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByIDForUpdate reads the request with a row lock held until the transaction ends, so a
// concurrent Assign either commits first and is seen, or waits for the caller.
func (r *ServiceRequestRepository) GetByIDForUpdate(id uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ServiceRequestRepository) List(f ServiceRequestFilter) ([]models.ServiceRequest, error) {
	q := r.db.Model(&models.ServiceRequest{})
	if f.RequesterID != nil {
		q = q.Where("requester_id = ?", *f.RequesterID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RequestType != "" {
		q = q.Where("request_type = ?", f.RequestType)
	}
	var list []models.ServiceRequest
	err := q.Order("created_at DESC").Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// MarkBidding flips an open request to bidding. It is a no-op for any other status.
func (r *ServiceRequestRepository) MarkBidding(id uint) error {
	return r.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestStatusOpen).
		Update("status", domain.RequestStatusBidding).Error
}

// Assign moves the request to assigned if it is still in one of the from statuses and has no
// provider. It reports whether this call won the assignment.
func (r *ServiceRequestRepository) Assign(id, providerID uint, providerName string, amountCents int64, from ...domain.RequestStatus) (bool, error) {
	res := r.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status IN ? AND assigned_provider_id IS NULL", id, from).
		Updates(map[string]interface{}{
			"status":                 domain.RequestStatusAssigned,
			"assigned_provider_id":   providerID,
			"assigned_provider_name": providerName,
			"final_amount_cents":     amountCents,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateStatus sets status when the current status is one of from. Assignment fields are untouched.
func (r *ServiceRequestRepository) UpdateStatus(id uint, to domain.RequestStatus, from ...domain.RequestStatus) (bool, error) {
	res := r.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ServiceRequestRepository) SetImages(id uint, images []string) error {
	return r.db.Model(&models.ServiceRequest{ID: id}).Select("images").
		Updates(&models.ServiceRequest{Images: images}).Error
}
