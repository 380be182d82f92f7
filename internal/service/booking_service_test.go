package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"servicehub/internal/domain"
	"servicehub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingLifecycleReleasesPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 1000)

	started, err := f.bookings.StartService(ctx, provider, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)
	req, err := f.bidding.GetServiceRequest(ctx, b.ServiceRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInProgress, req.Status)

	done, err := f.bookings.ProviderCompleteService(ctx, provider, b.ID)
	require.NoError(t, err)
	assert.True(t, done.CompletedByProvider)
	assert.Equal(t, domain.BookingStatusInProgress, done.Status)

	res, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 5, " great job ")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaymentReleased, res.Booking.Status)
	assert.True(t, res.Booking.CompletedByUser)
	require.NotNil(t, res.Booking.UserRating)
	assert.Equal(t, 5, *res.Booking.UserRating)
	assert.Equal(t, "great job", res.Booking.UserReview)

	w := f.wallet(t, provider.ID)
	assert.EqualValues(t, 1000, w.BalanceCents)
	assert.EqualValues(t, 1000, w.TotalEarnedCents)
	assert.EqualValues(t, 0, w.HeldBalanceCents)

	txns, err := f.wallets.ListTransactions(ctx, provider, 0, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.TransactionCredit, txns[0].Type)
	assert.EqualValues(t, 1000, txns[0].AmountCents)
	assert.Equal(t, BookingReference(b.ID), txns[0].Reference)
	require.NotNil(t, txns[0].BookingID)
	assert.Equal(t, b.ID, *txns[0].BookingID)

	req, err = f.bidding.GetServiceRequest(ctx, b.ServiceRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, req.Status)

	profile, err := repository.NewProviderRepository(f.db).GetByUserID(provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, profile.AverageRating())
}

func TestConfirmBeforeProviderCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 700)
	_, err := f.bookings.StartService(ctx, provider, b.ID)
	require.NoError(t, err)

	_, err = f.bookings.UserConfirmBooking(ctx, client, b.ID, 4, "")
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.Equal(t, "provider has not completed service yet", domain.Message(err))
	assert.EqualValues(t, 0, f.wallet(t, provider.ID).BalanceCents)
}

func TestConfirmTwiceCreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 1000)

	_, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 5, "")
	require.NoError(t, err)
	_, err = f.bookings.UserConfirmBooking(ctx, client, b.ID, 5, "")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, "already confirmed", domain.Message(err))

	w := f.wallet(t, provider.ID)
	assert.EqualValues(t, 1000, w.BalanceCents)
	n, err := repository.NewWalletRepository(f.db).CountTransactionsForBooking(b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestConfirmConcurrentlyCreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 800)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 4, ""); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.EqualValues(t, 800, f.wallet(t, provider.ID).BalanceCents)
}

func TestConfirmWithoutWalletRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 300)
	require.NoError(t, f.db.Exec("DELETE FROM wallets WHERE user_id = ?", provider.ID).Error)

	_, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 5, "")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	fresh, err := f.bookings.Get(ctx, client, b.ID)
	require.NoError(t, err)
	assert.False(t, fresh.CompletedByUser)
	assert.Equal(t, domain.BookingStatusInProgress, fresh.Status)
}

func TestConfirmRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 300)

	_, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, 0, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.bookings.UserConfirmBooking(ctx, client, b.ID, 6, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.bookings.UserConfirmBooking(ctx, provider, b.ID, 5, "")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	_, err = f.bookings.UserConfirmBooking(ctx, client, 5555, 5, "")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestStartAndCompleteGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 300)

	_, err := f.bookings.StartService(ctx, client, b.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	_, err = f.bookings.StartService(ctx, f.provider(t), b.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = f.bookings.ProviderCompleteService(ctx, provider, b.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	_, err = f.bookings.StartService(ctx, provider, b.ID)
	require.NoError(t, err)
	_, err = f.bookings.StartService(ctx, provider, b.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	_, err = f.bookings.ProviderCompleteService(ctx, provider, b.ID)
	require.NoError(t, err)
	_, err = f.bookings.ProviderCompleteService(ctx, provider, b.ID)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestCancelReleasesHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 600)
	assert.EqualValues(t, 600, f.wallet(t, provider.ID).HeldBalanceCents)

	_, err := f.bookings.Cancel(ctx, provider, b.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	cancelled, err := f.bookings.Cancel(ctx, client, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.EqualValues(t, 0, f.wallet(t, provider.ID).HeldBalanceCents)

	req, err := f.bidding.GetServiceRequest(ctx, b.ServiceRequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCancelled, req.Status)

	_, err = f.bookings.StartService(ctx, provider, b.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	_, err = f.bookings.Cancel(ctx, client, b.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestDisputeBlocksConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.completedBooking(t, client, provider, 900)

	_, err := f.bookings.Dispute(ctx, f.client(t), b.ID, "not mine")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	disputed, err := f.bookings.Dispute(ctx, provider, b.ID, "client unreachable")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusDisputed, disputed.Status)
	assert.Equal(t, "client unreachable", disputed.DisputeReason)

	_, err = f.bookings.UserConfirmBooking(ctx, client, b.ID, 5, "")
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.EqualValues(t, 0, f.wallet(t, provider.ID).BalanceCents)

	_, err = f.bookings.Dispute(ctx, client, b.ID, "again")
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestSetStatusDispatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 400)

	_, err := f.bookings.SetStatus(ctx, provider, b.ID, "finished")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.bookings.SetStatus(ctx, client, b.ID, string(domain.BookingStatusPaymentReleased))
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	_, err = f.bookings.SetStatus(ctx, provider, b.ID, string(domain.BookingStatusConfirmed))
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	got, err := f.bookings.SetStatus(ctx, provider, b.ID, string(domain.BookingStatusInProgress))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInProgress, got.Status)

	got, err = f.bookings.SetStatus(ctx, provider, b.ID, string(domain.BookingStatusCompleted))
	require.NoError(t, err)
	assert.True(t, got.CompletedByProvider)
}

func TestPayMarksBookingPaidOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 400)

	_, err := f.bookings.Pay(ctx, provider, b.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	paid, err := f.bookings.Pay(ctx, client, b.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.True(t, strings.HasPrefix(paid.PaymentReference, "stub_"))

	_, err = f.bookings.Pay(ctx, client, b.ID)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestMessagesInOrderAndPartiesOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 400)

	empty, err := f.bookings.ListMessages(ctx, client, b.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	texts := []string{"hello", "on my way", "see you"}
	senders := []domain.Actor{client, provider, client}
	for i, text := range texts {
		_, err := f.bookings.SendMessage(ctx, senders[i], b.ID, text)
		require.NoError(t, err)
	}

	list, err := f.bookings.ListMessages(ctx, provider, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, m := range list {
		assert.Equal(t, texts[i], m.Text)
		assert.Equal(t, senders[i].ID, m.SenderID)
	}
	assert.Equal(t, domain.SenderUser, list[0].SenderRole)
	assert.Equal(t, domain.SenderProvider, list[1].SenderRole)
	assert.Len(t, f.publisher.messages, 3)

	stranger := f.client(t)
	_, err = f.bookings.SendMessage(ctx, stranger, b.ID, "hi")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	_, err = f.bookings.ListMessages(ctx, stranger, b.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = f.bookings.SendMessage(ctx, client, b.ID, "   ")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.bookings.SendMessage(ctx, client, b.ID, strings.Repeat("a", 201))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.bookings.SendMessage(ctx, client, 8888, "hi")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestBookingVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)
	b := f.confirmedBooking(t, client, provider, 400)
	f.confirmedBooking(t, f.client(t), f.provider(t), 500)

	_, err := f.bookings.Get(ctx, f.client(t), b.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	admin := domain.Actor{ID: 999, Role: domain.RoleAdmin}
	_, err = f.bookings.Get(ctx, admin, b.ID)
	assert.NoError(t, err)

	mine, err := f.bookings.List(ctx, provider, repository.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.ID, mine[0].ID)

	_, err = f.bookings.List(ctx, client, repository.BookingFilter{UserID: &provider.ID})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	all, err := f.bookings.List(ctx, admin, repository.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := f.bookings.List(ctx, client, repository.BookingFilter{Status: domain.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}
