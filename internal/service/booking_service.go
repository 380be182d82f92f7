package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"
	"servicehub/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessagePublisher fans a stored booking message out to live subscribers.
type MessagePublisher interface {
	PublishBookingMessage(bookingID uint, msg *models.BookingMessage)
}

// BookingService drives a booking from confirmed to payment-released (or cancelled/disputed) and
// owns its message thread.
type BookingService struct {
	db            *gorm.DB
	bookings      *repository.BookingRepository
	requests      *repository.ServiceRequestRepository
	wallets       *repository.WalletRepository
	providers     *repository.ProviderRepository
	notifier      *NotificationService
	publisher     MessagePublisher
	payments      payment.Provider
	currency      string
	maxMessageLen int
	now           func() time.Time
}

func NewBookingService(db *gorm.DB, notifier *NotificationService, publisher MessagePublisher, payments payment.Provider, currency string, maxMessageLen int) *BookingService {
	return &BookingService{
		db:            db,
		bookings:      repository.NewBookingRepository(db),
		requests:      repository.NewServiceRequestRepository(db),
		wallets:       repository.NewWalletRepository(db),
		providers:     repository.NewProviderRepository(db),
		notifier:      notifier,
		publisher:     publisher,
		payments:      payments,
		currency:      currency,
		maxMessageLen: maxMessageLen,
		now:           time.Now,
	}
}

// ConfirmResult is what the client gets back after releasing payment.
type ConfirmResult struct {
	Booking *models.Booking `json:"booking"`
	Wallet  *models.Wallet  `json:"-"`
}

func (s *BookingService) load(bookings *repository.BookingRepository, id uint, op string) (*models.Booking, error) {
	b, err := bookings.GetByID(id)
	if err != nil {
		return nil, lookupErr(err, "booking not found", op)
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, actor domain.Actor, id uint) (*models.Booking, error) {
	b, err := s.load(s.bookings.WithTx(s.db.WithContext(ctx)), id, "BookingService.Get")
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, domain.Forbidden("not a party to this booking")
	}
	return b, nil
}

// List returns bookings visible to actor. Without a user/provider filter it lists the actor's own.
func (s *BookingService) List(ctx context.Context, actor domain.Actor, f repository.BookingFilter) ([]models.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Validation("invalid status filter")
	}
	if !actor.IsAdmin() {
		if (f.UserID != nil && *f.UserID != actor.ID) || (f.ProviderID != nil && *f.ProviderID != actor.ID) {
			return nil, domain.Forbidden("cannot list another user's bookings")
		}
		if f.UserID == nil && f.ProviderID == nil {
			id := actor.ID
			if actor.IsProvider() {
				f.ProviderID = &id
			} else {
				f.UserID = &id
			}
		}
	}
	f.Limit = pageLimit(f.Limit)
	list, err := s.bookings.WithTx(s.db.WithContext(ctx)).List(f)
	if err != nil {
		return nil, domain.Unexpected("BookingService.List", err)
	}
	return list, nil
}

// StartService moves a confirmed booking to in-progress. Provider only.
func (s *BookingService) StartService(ctx context.Context, actor domain.Actor, id uint) (*models.Booking, error) {
	var b *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		var err error
		if b, err = s.load(bookings, id, "BookingService.StartService"); err != nil {
			return err
		}
		if b.ProviderID != actor.ID {
			return domain.Forbidden("only the booking's provider can start the service")
		}
		if b.Status != domain.BookingStatusConfirmed {
			return domain.InvalidState("booking must be confirmed to start, current status is " + string(b.Status))
		}
		ok, err := bookings.Transition(id, map[string]interface{}{
			"status":     domain.BookingStatusInProgress,
			"started_at": s.now(),
		}, domain.BookingStatusConfirmed)
		if err != nil {
			return domain.Unexpected("BookingService.StartService", err)
		}
		if !ok {
			return domain.InvalidState("booking is no longer confirmed")
		}
		if _, err := s.requests.WithTx(tx).UpdateStatus(b.ServiceRequestID, domain.RequestStatusInProgress, domain.RequestStatusAssigned); err != nil {
			return domain.Unexpected("BookingService.StartService", err)
		}
		b, err = bookings.GetByID(id)
		return domain.Unexpected("BookingService.StartService", err)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyServiceStarted(b)
	return b, nil
}

// ProviderCompleteService records that the provider finished. Status stays in-progress until the
// client confirms.
func (s *BookingService) ProviderCompleteService(ctx context.Context, actor domain.Actor, id uint) (*models.Booking, error) {
	var b *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		var err error
		if b, err = s.load(bookings, id, "BookingService.ProviderCompleteService"); err != nil {
			return err
		}
		if b.ProviderID != actor.ID {
			return domain.Forbidden("only the booking's provider can complete the service")
		}
		if b.CompletedByProvider {
			return domain.Conflict("provider already completed service")
		}
		if b.Status != domain.BookingStatusInProgress {
			return domain.InvalidState("service has not started")
		}
		ok, err := bookings.MarkProviderCompleted(id, map[string]interface{}{"provider_completed_at": s.now()})
		if err != nil {
			return domain.Unexpected("BookingService.ProviderCompleteService", err)
		}
		if !ok {
			return domain.Conflict("provider already completed service")
		}
		b, err = bookings.GetByID(id)
		return domain.Unexpected("BookingService.ProviderCompleteService", err)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyProviderCompleted(b)
	return b, nil
}

// UserConfirmBooking is the client's half of the dual confirmation. The booking flip, the wallet
// credit with its ledger line, the provider rating and the request completion commit together or
// not at all, and a booking is credited at most once.
func (s *BookingService) UserConfirmBooking(ctx context.Context, actor domain.Actor, id uint, rating int, review string) (*ConfirmResult, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.Validation("rating must be between 1 and 5")
	}
	var res ConfirmResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		b, err := s.load(bookings, id, "BookingService.UserConfirmBooking")
		if err != nil {
			return err
		}
		if b.UserID != actor.ID {
			return domain.Forbidden("only the booking's client can confirm it")
		}
		if b.CompletedByUser || b.Status == domain.BookingStatusPaymentReleased {
			return domain.Conflict("already confirmed")
		}
		if !b.CompletedByProvider {
			return domain.InvalidState("provider has not completed service yet")
		}
		if b.Status == domain.BookingStatusCancelled || b.Status == domain.BookingStatusDisputed {
			return domain.InvalidState("booking is " + string(b.Status))
		}
		r := rating
		ok, err := bookings.ConfirmRelease(id, map[string]interface{}{
			"user_rating": r,
			"user_review": strings.TrimSpace(review),
			"released_at": s.now(),
		})
		if err != nil {
			return domain.Unexpected("BookingService.UserConfirmBooking", err)
		}
		if !ok {
			return domain.Conflict("already confirmed")
		}
		if res.Wallet, err = settleBooking(tx, b); err != nil {
			return err
		}
		if err := s.providers.WithTx(tx).AddRating(b.ProviderID, rating); err != nil {
			return domain.Unexpected("BookingService.UserConfirmBooking rating", err)
		}
		if _, err := s.requests.WithTx(tx).UpdateStatus(b.ServiceRequestID, domain.RequestStatusCompleted,
			domain.RequestStatusAssigned, domain.RequestStatusInProgress); err != nil {
			return domain.Unexpected("BookingService.UserConfirmBooking", err)
		}
		res.Booking, err = bookings.GetByID(id)
		return domain.Unexpected("BookingService.UserConfirmBooking", err)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyPaymentReleased(res.Booking)
	return &res, nil
}

// Dispute freezes a live booking. Either party may raise it.
func (s *BookingService) Dispute(ctx context.Context, actor domain.Actor, id uint, reason string) (*models.Booking, error) {
	var b *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		var err error
		if b, err = s.load(bookings, id, "BookingService.Dispute"); err != nil {
			return err
		}
		if !b.IsParty(actor.ID) {
			return domain.Forbidden("not a party to this booking")
		}
		if b.Status.Terminal() {
			return domain.InvalidState("booking is " + string(b.Status))
		}
		ok, err := bookings.Transition(id, map[string]interface{}{
			"status":         domain.BookingStatusDisputed,
			"dispute_reason": strings.TrimSpace(reason),
		}, domain.BookingStatusConfirmed, domain.BookingStatusInProgress, domain.BookingStatusCompleted)
		if err != nil {
			return domain.Unexpected("BookingService.Dispute", err)
		}
		if !ok {
			return domain.InvalidState("booking can no longer be disputed")
		}
		b, err = bookings.GetByID(id)
		return domain.Unexpected("BookingService.Dispute", err)
	})
	if err != nil {
		return nil, err
	}
	other := b.ProviderID
	if actor.ID == b.ProviderID {
		other = b.UserID
	}
	s.notifier.NotifyBookingDisputed(other, b)
	return b, nil
}

// Cancel withdraws a booking before work starts, releasing the provider's held amount.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, id uint) (*models.Booking, error) {
	var b *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		var err error
		if b, err = s.load(bookings, id, "BookingService.Cancel"); err != nil {
			return err
		}
		if b.UserID != actor.ID && !actor.IsAdmin() {
			return domain.Forbidden("only the booking's client can cancel it")
		}
		if b.Status != domain.BookingStatusConfirmed {
			return domain.InvalidState("booking can only be cancelled before the service starts")
		}
		ok, err := bookings.Transition(id, map[string]interface{}{"status": domain.BookingStatusCancelled}, domain.BookingStatusConfirmed)
		if err != nil {
			return domain.Unexpected("BookingService.Cancel", err)
		}
		if !ok {
			return domain.InvalidState("booking can only be cancelled before the service starts")
		}
		if _, err := s.requests.WithTx(tx).UpdateStatus(b.ServiceRequestID, domain.RequestStatusCancelled, domain.RequestStatusAssigned); err != nil {
			return domain.Unexpected("BookingService.Cancel", err)
		}
		if err := s.wallets.WithTx(tx).ReleaseHold(b.ProviderID, b.AgreedPriceCents); err != nil {
			return domain.Unexpected("BookingService.Cancel", err)
		}
		b, err = bookings.GetByID(id)
		return domain.Unexpected("BookingService.Cancel", err)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyBookingCancelled(b)
	return b, nil
}

// SetStatus validates status against the booking status set and runs the matching transition.
// confirmed and payment-released cannot be set directly.
func (s *BookingService) SetStatus(ctx context.Context, actor domain.Actor, id uint, status string) (*models.Booking, error) {
	st := domain.BookingStatus(status)
	if !st.Valid() {
		return nil, domain.Validation("invalid status: " + status)
	}
	switch st {
	case domain.BookingStatusInProgress:
		return s.StartService(ctx, actor, id)
	case domain.BookingStatusCompleted:
		return s.ProviderCompleteService(ctx, actor, id)
	case domain.BookingStatusDisputed:
		return s.Dispute(ctx, actor, id, "")
	case domain.BookingStatusCancelled:
		return s.Cancel(ctx, actor, id)
	case domain.BookingStatusPaymentReleased:
		return nil, domain.InvalidState("payment is released through confirm-release")
	}
	return nil, domain.InvalidState("status " + status + " cannot be set directly")
}

// Pay charges the client through the payment provider and marks the booking paid.
func (s *BookingService) Pay(ctx context.Context, actor domain.Actor, id uint) (*models.Booking, error) {
	bookings := s.bookings.WithTx(s.db.WithContext(ctx))
	b, err := s.load(bookings, id, "BookingService.Pay")
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, domain.Forbidden("only the booking's client can pay for it")
	}
	if b.IsPaid {
		return nil, domain.Conflict("booking already paid")
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.InvalidState("booking is cancelled")
	}
	if s.payments == nil {
		return nil, domain.InvalidState("payments are not configured")
	}
	resp, err := s.payments.InitiatePayment(ctx, payment.PaymentRequest{
		UserID:         actor.ID,
		AmountCents:    b.AgreedPriceCents,
		Currency:       s.currency,
		IdempotencyKey: uuid.New().String(),
		Description:    fmt.Sprintf("Booking %s", BookingReference(b.ID)),
		Metadata:       map[string]interface{}{"booking_id": b.ID},
	})
	if err != nil {
		return nil, domain.Unexpected("BookingService.Pay", err)
	}
	if resp.Status != payment.StatusCompleted {
		return nil, domain.InvalidState("payment not completed: " + resp.Status)
	}
	ok, err := bookings.MarkPaid(id, resp.Reference)
	if err != nil {
		return nil, domain.Unexpected("BookingService.Pay", err)
	}
	if !ok {
		return nil, domain.Conflict("booking already paid")
	}
	return s.load(bookings, id, "BookingService.Pay")
}

// SendMessage appends a message to the booking's thread. Only the two parties may write.
func (s *BookingService) SendMessage(ctx context.Context, actor domain.Actor, id uint, text string) (*models.BookingMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validation("message text is required")
	}
	if s.maxMessageLen > 0 && utf8.RuneCountInString(text) > s.maxMessageLen {
		return nil, domain.Validation(fmt.Sprintf("message exceeds %d characters", s.maxMessageLen))
	}
	bookings := s.bookings.WithTx(s.db.WithContext(ctx))
	b, err := s.load(bookings, id, "BookingService.SendMessage")
	if err != nil {
		return nil, err
	}
	role, ok := b.SenderRole(actor.ID)
	if !ok {
		return nil, domain.Forbidden("not a party to this booking")
	}
	m := &models.BookingMessage{
		BookingID:  b.ID,
		SenderID:   actor.ID,
		SenderRole: role,
		Text:       text,
	}
	if err := bookings.CreateMessage(m); err != nil {
		return nil, domain.Unexpected("BookingService.SendMessage", err)
	}
	if s.publisher != nil {
		s.publisher.PublishBookingMessage(b.ID, m)
	}
	recipient := b.ProviderID
	if role == domain.SenderProvider {
		recipient = b.UserID
	}
	s.notifier.NotifyNewMessage(recipient, m)
	return m, nil
}

// ListMessages returns the thread oldest first; an empty thread is an empty slice.
func (s *BookingService) ListMessages(ctx context.Context, actor domain.Actor, id uint) ([]models.BookingMessage, error) {
	bookings := s.bookings.WithTx(s.db.WithContext(ctx))
	b, err := s.load(bookings, id, "BookingService.ListMessages")
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, domain.Forbidden("not a party to this booking")
	}
	list, err := bookings.ListMessages(id)
	if err != nil {
		return nil, domain.Unexpected("BookingService.ListMessages", err)
	}
	return list, nil
}
