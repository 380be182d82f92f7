package domain

const (
	RoleClient   = "CLIENT"
	RoleProvider = "PROVIDER"
	RoleAdmin    = "ADMIN"
)

// RequestType is how a service request is priced.
type RequestType string

const (
	RequestTypeFixed   RequestType = "fixed"
	RequestTypeBidding RequestType = "bidding"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeFixed || t == RequestTypeBidding
}

type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "open"
	RequestStatusBidding    RequestStatus = "bidding"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusInProgress RequestStatus = "in-progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusBidding, RequestStatusAssigned,
		RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// AcceptingBids reports whether a bidding request can still take bids.
func (s RequestStatus) AcceptingBids() bool {
	return s == RequestStatusOpen || s == RequestStatusBidding
}

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

type BookingStatus string

const (
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusInProgress      BookingStatus = "in-progress"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
	BookingStatusDisputed        BookingStatus = "disputed"
	BookingStatusPaymentReleased BookingStatus = "payment-released"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusDisputed, BookingStatusPaymentReleased:
		return true
	}
	return false
}

// Terminal reports whether no further party action is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusDisputed || s == BookingStatusPaymentReleased
}

// SenderRole marks which side of a booking wrote a message.
type SenderRole string

const (
	SenderUser     SenderRole = "user"
	SenderProvider SenderRole = "provider"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionWithdrawn TransactionStatus = "withdrawn"
)

const WithdrawalReference = "withdrawal"

const (
	NotifyBidReceived       = "BID_RECEIVED"
	NotifyBidAccepted       = "BID_ACCEPTED"
	NotifyBidRejected       = "BID_REJECTED"
	NotifyRequestAssigned   = "REQUEST_ASSIGNED"
	NotifyServiceStarted    = "SERVICE_STARTED"
	NotifyProviderCompleted = "PROVIDER_COMPLETED"
	NotifyPaymentReleased   = "PAYMENT_RELEASED"
	NotifyBookingCancelled  = "BOOKING_CANCELLED"
	NotifyBookingDisputed   = "BOOKING_DISPUTED"
	NotifyNewMessage        = "NEW_MESSAGE"
)
