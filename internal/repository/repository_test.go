package repository_test

import (
	"errors"
	"testing"

	"servicehub/internal/database/dbtest"
	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWallet(t *testing.T, db *gorm.DB, userID uint) *repository.WalletRepository {
	t.Helper()
	repo := repository.NewWalletRepository(db)
	require.NoError(t, repo.Create(&models.Wallet{UserID: userID, Currency: "KES"}))
	return repo
}

func TestWalletCreditDebit(t *testing.T) {
	db := dbtest.New(t)
	repo := newWallet(t, db, 7)

	require.NoError(t, repo.Hold(7, 300))
	require.NoError(t, repo.Credit(7, 200))
	w, err := repo.GetByUserID(7)
	require.NoError(t, err)
	assert.EqualValues(t, 200, w.BalanceCents)
	assert.EqualValues(t, 200, w.TotalEarnedCents)
	assert.EqualValues(t, 100, w.HeldBalanceCents)

	err = repo.Debit(7, 201)
	assert.True(t, errors.Is(err, repository.ErrInsufficientBalance))
	require.NoError(t, repo.Debit(7, 200))

	w, err = repo.GetByUserID(7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, w.BalanceCents)
	assert.EqualValues(t, 200, w.TotalEarnedCents)

	assert.ErrorIs(t, repo.Credit(8, 10), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Debit(8, 10), gorm.ErrRecordNotFound)
}

func TestWalletHoldFloorsAtZero(t *testing.T) {
	db := dbtest.New(t)
	repo := newWallet(t, db, 3)

	require.NoError(t, repo.Hold(3, 100))
	require.NoError(t, repo.ReleaseHold(3, 250))
	w, err := repo.GetByUserID(3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, w.HeldBalanceCents)
}

func TestWalletOneCreditPerBooking(t *testing.T) {
	db := dbtest.New(t)
	repo := newWallet(t, db, 5)
	w, err := repo.GetByUserID(5)
	require.NoError(t, err)

	bookingID := uint(11)
	line := func() *models.WalletTransaction {
		return &models.WalletTransaction{
			WalletID: w.ID, UserID: 5, Type: domain.TransactionCredit, AmountCents: 10,
			Status: domain.TransactionCompleted, BookingID: &bookingID,
		}
	}
	require.NoError(t, repo.CreateTransaction(line()))
	assert.Error(t, repo.CreateTransaction(line()))

	n, err := repo.CountTransactionsForBooking(bookingID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// withdrawals carry no booking and never collide
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.CreateTransaction(&models.WalletTransaction{
			WalletID: w.ID, UserID: 5, Type: domain.TransactionDebit, AmountCents: 1,
			Reference: domain.WithdrawalReference, Status: domain.TransactionWithdrawn,
		}))
	}
	list, err := repo.ListTransactions(5, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestBookingTransitionGuards(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewBookingRepository(db)
	b := &models.Booking{
		ServiceRequestID: 1, UserID: 1, ProviderID: 2, AgreedPriceCents: 100,
		Status: domain.BookingStatusConfirmed,
	}
	require.NoError(t, repo.Create(b))

	ok, err := repo.ConfirmRelease(b.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, ok, "provider has not completed")

	ok, err = repo.MarkProviderCompleted(b.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, ok, "not in progress")

	ok, err = repo.Transition(b.ID, map[string]interface{}{"status": domain.BookingStatusInProgress}, domain.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Transition(b.ID, map[string]interface{}{"status": domain.BookingStatusInProgress}, domain.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MarkProviderCompleted(b.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConfirmRelease(b.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ConfirmRelease(b.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaymentReleased, got.Status)
	assert.True(t, got.CompletedByProvider)
	assert.True(t, got.CompletedByUser)
}

func TestBookingMarkPaidOnce(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewBookingRepository(db)
	b := &models.Booking{ServiceRequestID: 2, UserID: 1, ProviderID: 2, AgreedPriceCents: 100, Status: domain.BookingStatusConfirmed}
	require.NoError(t, repo.Create(b))

	ok, err := repo.MarkPaid(b.ID, "ref-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkPaid(b.ID, "ref-2")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.PaymentReference)
}

func TestBidsOrderedCheapestFirst(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewBidRepository(db)
	amounts := []int64{500, 300, 500, 450}
	for i, amount := range amounts {
		require.NoError(t, repo.Create(&models.Bid{
			ServiceRequestID: 1, ProviderID: uint(i + 1), ProviderName: gofakeit.Company(),
			ProposedAmountCents: amount, Status: domain.BidStatusPending,
		}))
	}

	list, err := repo.ListByRequest(1)
	require.NoError(t, err)
	require.Len(t, list, 4)
	got := []int64{}
	for _, b := range list {
		got = append(got, b.ProposedAmountCents)
	}
	assert.Equal(t, []int64{300, 450, 500, 500}, got)
	assert.EqualValues(t, 1, list[2].ProviderID, "ties keep creation order")

	exists, err := repo.ExistsForProvider(1, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(&models.Bid{ServiceRequestID: 1, ProviderID: 2, ProposedAmountCents: 1, Status: domain.BidStatusPending})
	assert.Error(t, err, "one bid per provider per request")

	require.NoError(t, repo.MarkAccepted(list[0].ID))
	require.NoError(t, repo.RejectOtherPending(1, list[0].ID))
	pending, err := repo.ListPendingByRequest(1)
	require.NoError(t, err)
	assert.Empty(t, pending)

	accepted, err := repo.GetByID(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusAccepted, accepted.Status)
}

func TestServiceRequestAssignOnce(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewServiceRequestRepository(db)
	req := &models.ServiceRequest{
		RequesterID: 1, CategoryID: 1, Description: gofakeit.Blurb(),
		RequestType: domain.RequestTypeBidding, Status: domain.RequestStatusOpen,
	}
	require.NoError(t, repo.Create(req))
	require.NoError(t, repo.MarkBidding(req.ID))

	ok, err := repo.Assign(req.ID, 9, "Nine", 400, domain.RequestStatusOpen, domain.RequestStatusBidding)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Assign(req.ID, 10, "Ten", 300, domain.RequestStatusOpen, domain.RequestStatusBidding)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAssigned, got.Status)
	require.NotNil(t, got.AssignedProviderID)
	assert.EqualValues(t, 9, *got.AssignedProviderID)
	require.NotNil(t, got.FinalAmountCents)
	assert.EqualValues(t, 400, *got.FinalAmountCents)

	locked, err := repo.GetByIDForUpdate(req.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsAssigned())
	_, err = repo.GetByIDForUpdate(req.ID + 100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.List(repository.ServiceRequestFilter{Status: domain.RequestStatusAssigned, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = repo.List(repository.ServiceRequestFilter{RequestType: domain.RequestTypeFixed, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}
