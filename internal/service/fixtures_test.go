package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"servicehub/internal/database/dbtest"
	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"
	"servicehub/pkg/payment"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

type recordingPusher struct {
	mu   sync.Mutex
	sent map[uint]int
}

func (p *recordingPusher) BroadcastToUser(userID uint, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[uint]int{}
	}
	p.sent[userID]++
}

func (p *recordingPusher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[userID]
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*models.BookingMessage
}

func (p *recordingPublisher) PublishBookingMessage(_ uint, m *models.BookingMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, m)
}

type fixture struct {
	db        *gorm.DB
	now       time.Time
	notifier  *NotificationService
	pusher    *recordingPusher
	publisher *recordingPublisher
	bidding   *BiddingService
	bookings  *BookingService
	wallets   *WalletService
	category  *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{
		db:        db,
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		pusher:    &recordingPusher{},
		publisher: &recordingPublisher{},
	}
	f.notifier = NewNotificationService(repository.NewNotificationRepository(db), f.pusher)
	f.bidding = NewBiddingService(db, f.notifier, nil, "test")
	f.bidding.now = func() time.Time { return f.now }
	f.bookings = NewBookingService(db, f.notifier, f.publisher, &payment.StubProvider{}, "KES", 200)
	f.bookings.now = func() time.Time { return f.now }
	f.wallets = NewWalletService(db)
	f.category = &models.Category{Name: gofakeit.BuzzWord() + fmt.Sprint(seq.Add(1))}
	require.NoError(t, repository.NewCategoryRepository(db).Create(f.category))
	return f
}

func (f *fixture) user(t *testing.T, role string) *models.User {
	t.Helper()
	u := &models.User{
		Name:  gofakeit.Name(),
		Email: fmt.Sprintf("%s.%d@example.com", gofakeit.Username(), seq.Add(1)),
		Role:  role,
	}
	require.NoError(t, repository.NewUserRepository(f.db).Create(u))
	return u
}

func (f *fixture) client(t *testing.T) domain.Actor {
	return f.user(t, domain.RoleClient).Actor()
}

// provider creates a provider account with its profile and an empty wallet.
func (f *fixture) provider(t *testing.T) domain.Actor {
	t.Helper()
	u := f.user(t, domain.RoleProvider)
	require.NoError(t, repository.NewProviderRepository(f.db).Create(&models.Provider{
		UserID: u.ID, DisplayName: gofakeit.Company(), IsActive: true,
	}))
	require.NoError(t, repository.NewWalletRepository(f.db).Create(&models.Wallet{UserID: u.ID, Currency: "KES"}))
	return u.Actor()
}

// biddingRequest opens a bidding request accepting 1..1,000,000 for a week.
func (f *fixture) biddingRequest(t *testing.T, client domain.Actor) *models.ServiceRequest {
	t.Helper()
	return f.biddingRequestWith(t, client, 1, 1_000_000, f.now.Add(7*24*time.Hour))
}

func (f *fixture) biddingRequestWith(t *testing.T, client domain.Actor, minBid, maxBid int64, endsAt time.Time) *models.ServiceRequest {
	t.Helper()
	pricing, err := NewPricing(domain.RequestTypeBidding, nil, &minBid, &maxBid, &endsAt)
	require.NoError(t, err)
	req, err := f.bidding.CreateServiceRequest(context.Background(), client, CreateRequestInput{
		CategoryID:  f.category.ID,
		Description: gofakeit.Blurb(),
		Pricing:     pricing,
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) fixedRequest(t *testing.T, client domain.Actor, amount int64) *models.ServiceRequest {
	t.Helper()
	pricing, err := NewPricing(domain.RequestTypeFixed, &amount, nil, nil, nil)
	require.NoError(t, err)
	req, err := f.bidding.CreateServiceRequest(context.Background(), client, CreateRequestInput{
		CategoryID:  f.category.ID,
		Description: gofakeit.Blurb(),
		Pricing:     pricing,
	})
	require.NoError(t, err)
	return req
}

// confirmedBooking runs request -> bid -> accept and returns the booking.
func (f *fixture) confirmedBooking(t *testing.T, client, provider domain.Actor, amount int64) *models.Booking {
	t.Helper()
	ctx := context.Background()
	req := f.biddingRequest(t, client)
	bid, err := f.bidding.PlaceBid(ctx, provider, PlaceBidInput{ServiceRequestID: req.ID, AmountCents: amount})
	require.NoError(t, err)
	_, booking, err := f.bidding.AcceptBid(ctx, client, bid.ID)
	require.NoError(t, err)
	return booking
}

func (f *fixture) completedBooking(t *testing.T, client, provider domain.Actor, amount int64) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b := f.confirmedBooking(t, client, provider, amount)
	_, err := f.bookings.StartService(ctx, provider, b.ID)
	require.NoError(t, err)
	b, err = f.bookings.ProviderCompleteService(ctx, provider, b.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) wallet(t *testing.T, userID uint) *models.Wallet {
	t.Helper()
	w, err := repository.NewWalletRepository(f.db).GetByUserID(userID)
	require.NoError(t, err)
	return w
}
