package service

import (
	"encoding/json"
	"fmt"

	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"
	"servicehub/pkg/logger"
)

// Pusher delivers a payload to a user's live connections, if any.
type Pusher interface {
	BroadcastToUser(userID uint, payload interface{})
}

// NotificationService stores in-app notifications and pushes them to connected clients.
// A nil *NotificationService is valid and drops everything.
type NotificationService struct {
	repo   *repository.NotificationRepository
	pusher Pusher
}

func NewNotificationService(repo *repository.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	if s == nil || s.repo == nil {
		return nil
	}
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	if s.pusher != nil {
		s.pusher.BroadcastToUser(userID, map[string]interface{}{"type": "notification", "notification": n})
	}
	return nil
}

// notify is fire-and-forget: the operation that triggered it has already committed.
func (s *NotificationService) notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	if err := s.Notify(userID, notifType, title, body, data); err != nil {
		logger.Get().Warn("notification", err.Error(), "NotificationService.notify", fmt.Sprintf("user=%d type=%s", userID, notifType))
	}
}

func (s *NotificationService) NotifyBidReceived(requesterID uint, bid *models.Bid) {
	s.notify(requesterID, domain.NotifyBidReceived, "New bid",
		fmt.Sprintf("%s bid %d on your request", bid.ProviderName, bid.ProposedAmountCents),
		map[string]interface{}{"service_request_id": bid.ServiceRequestID, "bid_id": bid.ID})
}

func (s *NotificationService) NotifyBidAccepted(b *models.Booking) {
	s.notify(b.ProviderID, domain.NotifyBidAccepted, "Bid accepted",
		b.UserName+" accepted your bid",
		map[string]interface{}{"service_request_id": b.ServiceRequestID, "booking_id": b.ID})
}

func (s *NotificationService) NotifyBidRejected(providerID, requestID uint) {
	s.notify(providerID, domain.NotifyBidRejected, "Bid not selected",
		"Another provider was chosen for this request",
		map[string]interface{}{"service_request_id": requestID})
}

func (s *NotificationService) NotifyRequestAssigned(b *models.Booking) {
	s.notify(b.UserID, domain.NotifyRequestAssigned, "Provider assigned",
		b.ProviderName+" will handle your request",
		map[string]interface{}{"service_request_id": b.ServiceRequestID, "booking_id": b.ID})
}

func (s *NotificationService) NotifyServiceStarted(b *models.Booking) {
	s.notify(b.UserID, domain.NotifyServiceStarted, "Service started",
		b.ProviderName+" started working on your booking",
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyProviderCompleted(b *models.Booking) {
	s.notify(b.UserID, domain.NotifyProviderCompleted, "Service completed",
		b.ProviderName+" marked the service as done. Confirm to release payment.",
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyPaymentReleased(b *models.Booking) {
	s.notify(b.ProviderID, domain.NotifyPaymentReleased, "Payment released",
		fmt.Sprintf("%d was credited to your wallet", b.AgreedPriceCents),
		map[string]interface{}{"booking_id": b.ID, "amount": b.AgreedPriceCents})
}

func (s *NotificationService) NotifyBookingCancelled(b *models.Booking) {
	s.notify(b.ProviderID, domain.NotifyBookingCancelled, "Booking cancelled",
		b.UserName+" cancelled the booking",
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyBookingDisputed(recipientID uint, b *models.Booking) {
	s.notify(recipientID, domain.NotifyBookingDisputed, "Booking disputed",
		"The booking was marked as disputed",
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyNewMessage(recipientID uint, m *models.BookingMessage) {
	s.notify(recipientID, domain.NotifyNewMessage, "New message", m.Text,
		map[string]interface{}{"booking_id": m.BookingID, "message_id": m.ID})
}

func (s *NotificationService) List(actor domain.Actor, limit, offset int) ([]models.Notification, int64, error) {
	list, err := s.repo.ListByUserID(actor.ID, pageLimit(limit), offset)
	if err != nil {
		return nil, 0, domain.Unexpected("NotificationService.List", err)
	}
	unread, err := s.repo.CountUnread(actor.ID)
	if err != nil {
		return nil, 0, domain.Unexpected("NotificationService.List", err)
	}
	return list, unread, nil
}

func (s *NotificationService) MarkRead(actor domain.Actor, id uint) error {
	ok, err := s.repo.MarkRead(id, actor.ID)
	if err != nil {
		return domain.Unexpected("NotificationService.MarkRead", err)
	}
	if !ok {
		return domain.NotFound("notification not found")
	}
	return nil
}
