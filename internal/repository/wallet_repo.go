package repository

import (
	"errors"

	"servicehub/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) Create(w *models.Wallet) error {
	return r.db.Create(w).Error
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds an earning to balance and total earned in one statement and releases up to the same
// amount from the held balance. Returns gorm.ErrRecordNotFound when the user has no wallet.
func (r *WalletRepository) Credit(userID uint, amountCents int64) error {
	res := r.db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_cents":      gorm.Expr("balance_cents + ?", amountCents),
			"total_earned_cents": gorm.Expr("total_earned_cents + ?", amountCents),
			"held_balance_cents": gorm.Expr("CASE WHEN held_balance_cents > ? THEN held_balance_cents - ? ELSE 0 END", amountCents, amountCents),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Debit takes amountCents off the balance only if it is covered.
func (r *WalletRepository) Debit(userID uint, amountCents int64) error {
	res := r.db.Model(&models.Wallet{}).
		Where("user_id = ? AND balance_cents >= ?", userID, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByUserID(userID); err != nil {
			return err
		}
		return ErrInsufficientBalance
	}
	return nil
}

// Hold reserves a booking's price against the provider. Missing wallets are skipped.
func (r *WalletRepository) Hold(userID uint, amountCents int64) error {
	return r.db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Update("held_balance_cents", gorm.Expr("held_balance_cents + ?", amountCents)).Error
}

// ReleaseHold drops a reservation without paying it out, floored at zero.
func (r *WalletRepository) ReleaseHold(userID uint, amountCents int64) error {
	return r.db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Update("held_balance_cents", gorm.Expr("CASE WHEN held_balance_cents > ? THEN held_balance_cents - ? ELSE 0 END", amountCents, amountCents)).Error
}

func (r *WalletRepository) CreateTransaction(t *models.WalletTransaction) error {
	return r.db.Create(t).Error
}

// ListTransactions returns the wallet's ledger oldest first.
func (r *WalletRepository) ListTransactions(userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	list := []models.WalletTransaction{}
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *WalletRepository) CountTransactionsForBooking(bookingID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.WalletTransaction{}).Where("booking_id = ?", bookingID).Count(&c).Error
	return c, err
}
