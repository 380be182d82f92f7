package service

import (
	"context"
	"errors"
	"fmt"

	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"

	"gorm.io/gorm"
)

// BookingReference is the ledger reference of a booking's settlement credit.
func BookingReference(bookingID uint) string {
	return fmt.Sprintf("BK-%06d", bookingID%1000000)
}

type WalletService struct {
	db      *gorm.DB
	wallets *repository.WalletRepository
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db, wallets: repository.NewWalletRepository(db)}
}

func (s *WalletService) GetWallet(ctx context.Context, actor domain.Actor) (*models.Wallet, error) {
	w, err := s.wallets.WithTx(s.db.WithContext(ctx)).GetByUserID(actor.ID)
	if err != nil {
		return nil, lookupErr(err, "wallet not found", "WalletService.GetWallet")
	}
	return w, nil
}

func (s *WalletService) ListTransactions(ctx context.Context, actor domain.Actor, limit, offset int) ([]models.WalletTransaction, error) {
	wallets := s.wallets.WithTx(s.db.WithContext(ctx))
	if _, err := wallets.GetByUserID(actor.ID); err != nil {
		return nil, lookupErr(err, "wallet not found", "WalletService.ListTransactions")
	}
	list, err := wallets.ListTransactions(actor.ID, pageLimit(limit), offset)
	if err != nil {
		return nil, domain.Unexpected("WalletService.ListTransactions", err)
	}
	return list, nil
}

// Withdraw debits amountCents from the actor's balance and records the ledger line. Only the
// ledger is modelled; no payout leaves the system.
func (s *WalletService) Withdraw(ctx context.Context, actor domain.Actor, amountCents int64) (*models.Wallet, *models.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, nil, domain.InsufficientFunds("withdrawal amount must be greater than zero")
	}
	var (
		wallet *models.Wallet
		txn    *models.WalletTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallets := s.wallets.WithTx(tx)
		if err := wallets.Debit(actor.ID, amountCents); err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientBalance):
				return domain.InsufficientFunds("insufficient balance")
			case errors.Is(err, gorm.ErrRecordNotFound):
				return domain.NotFound("wallet not found")
			}
			return domain.Unexpected("WalletService.Withdraw", err)
		}
		var err error
		wallet, err = wallets.GetByUserID(actor.ID)
		if err != nil {
			return domain.Unexpected("WalletService.Withdraw", err)
		}
		txn = &models.WalletTransaction{
			WalletID:    wallet.ID,
			UserID:      actor.ID,
			Type:        domain.TransactionDebit,
			AmountCents: amountCents,
			Reference:   domain.WithdrawalReference,
			Status:      domain.TransactionWithdrawn,
		}
		if err := wallets.CreateTransaction(txn); err != nil {
			return domain.Unexpected("WalletService.Withdraw", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return wallet, txn, nil
}

// settleBooking credits the booking's price to the provider's wallet inside tx. It is reachable
// only from the client's confirm-and-release step.
func settleBooking(tx *gorm.DB, b *models.Booking) (*models.Wallet, error) {
	wallets := repository.NewWalletRepository(tx)
	if err := wallets.Credit(b.ProviderID, b.AgreedPriceCents); err != nil {
		return nil, lookupErr(err, "provider wallet not found", "settleBooking")
	}
	w, err := wallets.GetByUserID(b.ProviderID)
	if err != nil {
		return nil, domain.Unexpected("settleBooking", err)
	}
	bookingID := b.ID
	txn := &models.WalletTransaction{
		WalletID:    w.ID,
		UserID:      b.ProviderID,
		Type:        domain.TransactionCredit,
		AmountCents: b.AgreedPriceCents,
		Reference:   BookingReference(b.ID),
		Status:      domain.TransactionCompleted,
		BookingID:   &bookingID,
	}
	if err := wallets.CreateTransaction(txn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("already confirmed")
		}
		return nil, domain.Unexpected("settleBooking", err)
	}
	return w, nil
}
