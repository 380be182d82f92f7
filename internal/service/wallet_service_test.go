package service

import (
	"context"
	"testing"

	"servicehub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingReference(t *testing.T) {
	assert.Equal(t, "BK-000042", BookingReference(42))
	assert.Equal(t, "BK-123456", BookingReference(123456))
	assert.Equal(t, "BK-000001", BookingReference(1000001))
}

func TestWithdrawMoreThanBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 500)
	_, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 5, "")
	require.NoError(t, err)

	_, _, err = f.wallets.Withdraw(ctx, provider, 501)
	assert.Equal(t, domain.KindInsufficientFunds, domain.KindOf(err))
	assert.EqualValues(t, 500, f.wallet(t, provider.ID).BalanceCents)

	txns, err := f.wallets.ListTransactions(ctx, provider, 0, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestWithdrawRecordsDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 500)
	_, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 3, "")
	require.NoError(t, err)

	w, txn, err := f.wallets.Withdraw(ctx, provider, 200)
	require.NoError(t, err)
	assert.EqualValues(t, 300, w.BalanceCents)
	assert.EqualValues(t, 500, w.TotalEarnedCents)
	assert.Equal(t, domain.TransactionDebit, txn.Type)
	assert.Equal(t, domain.WithdrawalReference, txn.Reference)
	assert.EqualValues(t, 200, txn.AmountCents)
	assert.Nil(t, txn.BookingID)

	_, _, err = f.wallets.Withdraw(ctx, provider, 300)
	require.NoError(t, err)
	got, err := f.wallets.GetWallet(ctx, provider)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.BalanceCents)
	assert.EqualValues(t, 500, got.TotalEarnedCents)

	txns, err := f.wallets.ListTransactions(ctx, provider, 0, 0)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, domain.TransactionCredit, txns[0].Type)
	assert.Equal(t, domain.TransactionDebit, txns[2].Type)
}

func TestWithdrawRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	provider := f.provider(t)

	for _, amount := range []int64{0, -10} {
		_, _, err := f.wallets.Withdraw(ctx, provider, amount)
		assert.Equal(t, domain.KindInsufficientFunds, domain.KindOf(err), "amount %d", amount)
	}

	client := f.client(t)
	_, _, err := f.wallets.Withdraw(ctx, client, 10)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	_, err = f.wallets.GetWallet(ctx, client)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	_, err = f.wallets.ListTransactions(ctx, client, 0, 0)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestListTransactionsEmpty(t *testing.T) {
	f := newFixture(t)
	txns, err := f.wallets.ListTransactions(context.Background(), f.provider(t), 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}
