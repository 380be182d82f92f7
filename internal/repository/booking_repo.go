package repository

import (
	"servicehub/internal/domain"
	"servicehub/internal/models"

	"gorm.io/gorm"
)

type BookingFilter struct {
	UserID     *uint
	ProviderID *uint
	Status     domain.BookingStatus
	Limit      int
	Offset     int
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) CountByBidID(bidID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Booking{}).Where("bid_id = ?", bidID).Count(&c).Error
	return c, err
}

func (r *BookingRepository) List(f BookingFilter) ([]models.Booking, error) {
	q := r.db.Model(&models.Booking{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.Booking
	err := q.Order("created_at DESC").Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// Transition applies updates only while the booking is in one of the from statuses.
// It reports whether the row changed, so racing callers see exactly one winner.
func (r *BookingRepository) Transition(id uint, updates map[string]interface{}, from ...domain.BookingStatus) (bool, error) {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkProviderCompleted sets the provider flag once, while the booking is in progress.
func (r *BookingRepository) MarkProviderCompleted(id uint, updates map[string]interface{}) (bool, error) {
	updates["completed_by_provider"] = true
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ? AND completed_by_provider = ?", id, domain.BookingStatusInProgress, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ConfirmRelease is the guarded dual-confirmation transition: it only succeeds when the provider
// has completed and the client has not confirmed yet.
func (r *BookingRepository) ConfirmRelease(id uint, updates map[string]interface{}) (bool, error) {
	updates["completed_by_user"] = true
	updates["status"] = domain.BookingStatusPaymentReleased
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND completed_by_provider = ? AND completed_by_user = ? AND status NOT IN ?", id, true, false,
			[]domain.BookingStatus{domain.BookingStatusPaymentReleased, domain.BookingStatusCancelled, domain.BookingStatusDisputed}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingRepository) MarkPaid(id uint, reference string) (bool, error) {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{"is_paid": true, "payment_reference": reference})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Messages

func (r *BookingRepository) CreateMessage(m *models.BookingMessage) error {
	return r.db.Create(m).Error
}

// ListMessages returns the booking's messages oldest first.
func (r *BookingRepository) ListMessages(bookingID uint) ([]models.BookingMessage, error) {
	list := []models.BookingMessage{}
	err := r.db.Where("booking_id = ?", bookingID).Order("id ASC").Find(&list).Error
	return list, err
}
