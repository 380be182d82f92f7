package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pricing is the type-specific part of a service request: FixedPrice or BiddingWindow.
type Pricing interface {
	Type() domain.RequestType
	validate(now time.Time) error
	apply(r *models.ServiceRequest)
}

type FixedPrice struct {
	AmountCents int64
}

func (FixedPrice) Type() domain.RequestType { return domain.RequestTypeFixed }

func (p FixedPrice) validate(time.Time) error {
	if p.AmountCents <= 0 {
		return domain.Validation("fixed amount must be greater than zero")
	}
	return nil
}

func (p FixedPrice) apply(r *models.ServiceRequest) {
	amount := p.AmountCents
	r.RequestType = domain.RequestTypeFixed
	r.FixedAmountCents = &amount
}

type BiddingWindow struct {
	MinCents int64
	MaxCents int64
	EndsAt   time.Time
}

func (BiddingWindow) Type() domain.RequestType { return domain.RequestTypeBidding }

func (w BiddingWindow) validate(now time.Time) error {
	if w.MinCents <= 0 {
		return domain.Validation("minimum bid amount must be greater than zero")
	}
	if w.MaxCents < w.MinCents {
		return domain.Validation("maximum bid amount must not be below the minimum")
	}
	if !w.EndsAt.After(now) {
		return domain.Validation("bidding end date must be in the future")
	}
	return nil
}

func (w BiddingWindow) apply(r *models.ServiceRequest) {
	minCents, maxCents, ends := w.MinCents, w.MaxCents, w.EndsAt
	r.RequestType = domain.RequestTypeBidding
	r.MinBidCents = &minCents
	r.MaxBidCents = &maxCents
	r.BiddingEndsAt = &ends
}

// NewPricing builds the pricing for requestType from loosely typed input, rejecting fields that
// belong to the other type.
func NewPricing(requestType domain.RequestType, fixed, minBid, maxBid *int64, endsAt *time.Time) (Pricing, error) {
	switch requestType {
	case domain.RequestTypeFixed:
		if fixed == nil {
			return nil, domain.Validation("fixed amount is required for fixed requests")
		}
		if minBid != nil || maxBid != nil || endsAt != nil {
			return nil, domain.Validation("bidding fields are not allowed on fixed requests")
		}
		return FixedPrice{AmountCents: *fixed}, nil
	case domain.RequestTypeBidding:
		if fixed != nil {
			return nil, domain.Validation("fixed amount is not allowed on bidding requests")
		}
		if minBid == nil || maxBid == nil || endsAt == nil {
			return nil, domain.Validation("min bid amount, max bid amount and bidding end date are required for bidding requests")
		}
		return BiddingWindow{MinCents: *minBid, MaxCents: *maxBid, EndsAt: *endsAt}, nil
	}
	return nil, domain.Validation("request type must be fixed or bidding")
}

type CreateRequestInput struct {
	CategoryID  uint
	Description string
	Pricing     Pricing
	Images      []string
}

type PlaceBidInput struct {
	ServiceRequestID uint
	AmountCents      int64
	Note             string
	EstimatedTime    string
	Attachments      []string
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error)
}

// BiddingService owns service requests, bids and the transition of a request to assigned.
type BiddingService struct {
	db          *gorm.DB
	requests    *repository.ServiceRequestRepository
	bids        *repository.BidRepository
	bookings    *repository.BookingRepository
	users       *repository.UserRepository
	providers   *repository.ProviderRepository
	categories  *repository.CategoryRepository
	wallets     *repository.WalletRepository
	notifier    *NotificationService
	images      ImageUploader
	imageFolder string
	now         func() time.Time
}

func NewBiddingService(db *gorm.DB, notifier *NotificationService, images ImageUploader, imageFolder string) *BiddingService {
	return &BiddingService{
		db:          db,
		requests:    repository.NewServiceRequestRepository(db),
		bids:        repository.NewBidRepository(db),
		bookings:    repository.NewBookingRepository(db),
		users:       repository.NewUserRepository(db),
		providers:   repository.NewProviderRepository(db),
		categories:  repository.NewCategoryRepository(db),
		wallets:     repository.NewWalletRepository(db),
		notifier:    notifier,
		images:      images,
		imageFolder: imageFolder,
		now:         time.Now,
	}
}

func (s *BiddingService) CreateServiceRequest(ctx context.Context, actor domain.Actor, in CreateRequestInput) (*models.ServiceRequest, error) {
	if !actor.IsClient() {
		return nil, domain.Forbidden("only clients can create service requests")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.Validation("description is required")
	}
	if in.Pricing == nil {
		return nil, domain.Validation("request type must be fixed or bidding")
	}
	if err := in.Pricing.validate(s.now()); err != nil {
		return nil, err
	}
	cat, err := s.categories.GetByID(in.CategoryID)
	if err != nil {
		return nil, lookupErr(err, "category not found", "BiddingService.CreateServiceRequest")
	}
	requester, err := s.users.GetByID(actor.ID)
	if err != nil {
		return nil, lookupErr(err, "user not found", "BiddingService.CreateServiceRequest")
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	req := &models.ServiceRequest{
		RequesterID:   requester.ID,
		RequesterName: requester.Name,
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		Description:   description,
		Status:        domain.RequestStatusOpen,
		Images:        images,
	}
	in.Pricing.apply(req)
	if err := s.requests.Create(req); err != nil {
		return nil, domain.Unexpected("BiddingService.CreateServiceRequest", err)
	}
	return req, nil
}

func (s *BiddingService) GetServiceRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	req, err := s.requests.WithTx(s.db.WithContext(ctx)).GetByID(id)
	if err != nil {
		return nil, lookupErr(err, "service request not found", "BiddingService.GetServiceRequest")
	}
	return req, nil
}

func (s *BiddingService) ListServiceRequests(ctx context.Context, f repository.ServiceRequestFilter) ([]models.ServiceRequest, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Validation("invalid status filter")
	}
	if f.RequestType != "" && !f.RequestType.Valid() {
		return nil, domain.Validation("invalid request type filter")
	}
	f.Limit = pageLimit(f.Limit)
	list, err := s.requests.WithTx(s.db.WithContext(ctx)).List(f)
	if err != nil {
		return nil, domain.Unexpected("BiddingService.ListServiceRequests", err)
	}
	return list, nil
}

// AttachImage uploads an image for the request's owner and appends its URL.
func (s *BiddingService) AttachImage(ctx context.Context, actor domain.Actor, requestID uint, file io.Reader) (*models.ServiceRequest, error) {
	req, err := s.GetServiceRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.ID {
		return nil, domain.Forbidden("only the requester can add images")
	}
	if s.images == nil {
		return nil, domain.InvalidState("image uploads are not configured")
	}
	folder := fmt.Sprintf("%s/%d", s.imageFolder, req.ID)
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, _, err := s.images.UploadImage(ctx, file, folder, publicID)
	if err != nil {
		return nil, domain.Unexpected("BiddingService.AttachImage upload", err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)
		fresh, err := requests.GetByID(requestID)
		if err != nil {
			return lookupErr(err, "service request not found", "BiddingService.AttachImage")
		}
		fresh.Images = append(fresh.Images, url)
		if err := requests.SetImages(fresh.ID, fresh.Images); err != nil {
			return domain.Unexpected("BiddingService.AttachImage", err)
		}
		req = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// PlaceBid records a provider's offer on a bidding request and moves an open request to bidding.
func (s *BiddingService) PlaceBid(ctx context.Context, actor domain.Actor, in PlaceBidInput) (*models.Bid, error) {
	if !actor.IsProvider() {
		return nil, domain.Forbidden("only providers can place bids")
	}
	if in.AmountCents <= 0 {
		return nil, domain.Validation("proposed amount must be greater than zero")
	}
	var (
		bid *models.Bid
		req *models.ServiceRequest
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)
		bids := s.bids.WithTx(tx)

		// locked so an AcceptBid on this request cannot commit between the check and the insert
		var err error
		req, err = requests.GetByIDForUpdate(in.ServiceRequestID)
		if err != nil {
			return lookupErr(err, "service request not found", "BiddingService.PlaceBid")
		}
		if req.RequestType != domain.RequestTypeBidding {
			return domain.InvalidState("not open for bidding")
		}
		if !req.Status.AcceptingBids() || req.IsAssigned() {
			return domain.InvalidState("bidding closed")
		}
		if req.BiddingEndsAt != nil && !s.now().Before(*req.BiddingEndsAt) {
			return domain.InvalidState("bidding closed")
		}
		if (req.MinBidCents != nil && in.AmountCents < *req.MinBidCents) ||
			(req.MaxBidCents != nil && in.AmountCents > *req.MaxBidCents) {
			return domain.Validation("proposed amount is outside the allowed bid range")
		}
		provider, err := s.providers.WithTx(tx).GetByUserID(actor.ID)
		if err != nil {
			return lookupErr(err, "provider not found", "BiddingService.PlaceBid")
		}
		exists, err := bids.ExistsForProvider(req.ID, actor.ID)
		if err != nil {
			return domain.Unexpected("BiddingService.PlaceBid", err)
		}
		if exists {
			return domain.Conflict("already bid")
		}
		attachments := in.Attachments
		if attachments == nil {
			attachments = []string{}
		}
		bid = &models.Bid{
			ServiceRequestID:    req.ID,
			ProviderID:          actor.ID,
			ProviderName:        provider.DisplayName,
			ProposedAmountCents: in.AmountCents,
			Note:                strings.TrimSpace(in.Note),
			EstimatedTime:       strings.TrimSpace(in.EstimatedTime),
			Attachments:         attachments,
			Status:              domain.BidStatusPending,
		}
		if err := bids.Create(bid); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.Conflict("already bid")
			}
			return domain.Unexpected("BiddingService.PlaceBid", err)
		}
		if err := requests.MarkBidding(req.ID); err != nil {
			return domain.Unexpected("BiddingService.PlaceBid", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyBidReceived(req.RequesterID, bid)
	return bid, nil
}

// AcceptBid assigns the request to the bid's provider and opens a confirmed booking. Concurrent
// acceptances on one request race on a conditional update; only one of them commits.
func (s *BiddingService) AcceptBid(ctx context.Context, actor domain.Actor, bidID uint) (*models.ServiceRequest, *models.Booking, error) {
	var (
		req      *models.ServiceRequest
		booking  *models.Booking
		rejected []models.Bid
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)
		bids := s.bids.WithTx(tx)

		bid, err := bids.GetByID(bidID)
		if err != nil {
			return lookupErr(err, "bid not found", "BiddingService.AcceptBid")
		}
		req, err = requests.GetByID(bid.ServiceRequestID)
		if err != nil {
			return lookupErr(err, "service request not found", "BiddingService.AcceptBid")
		}
		if req.RequesterID != actor.ID && !actor.IsAdmin() {
			return domain.Forbidden("only the requester can accept bids")
		}
		if req.IsAssigned() || req.Status == domain.RequestStatusAssigned {
			return domain.InvalidState("already assigned")
		}
		if !req.Status.AcceptingBids() {
			return domain.InvalidState("request is " + string(req.Status))
		}
		provider, err := s.providers.WithTx(tx).GetByUserID(bid.ProviderID)
		if err != nil {
			return lookupErr(err, "provider not found", "BiddingService.AcceptBid")
		}
		won, err := requests.Assign(req.ID, bid.ProviderID, provider.DisplayName, bid.ProposedAmountCents,
			domain.RequestStatusOpen, domain.RequestStatusBidding)
		if err != nil {
			return domain.Unexpected("BiddingService.AcceptBid", err)
		}
		if !won {
			return domain.InvalidState("already assigned")
		}
		if rejected, err = bids.ListPendingByRequest(req.ID); err != nil {
			return domain.Unexpected("BiddingService.AcceptBid", err)
		}
		if err := bids.MarkAccepted(bid.ID); err != nil {
			return domain.Unexpected("BiddingService.AcceptBid", err)
		}
		if err := bids.RejectOtherPending(req.ID, bid.ID); err != nil {
			return domain.Unexpected("BiddingService.AcceptBid", err)
		}
		bidRef := bid.ID
		booking, err = s.openBooking(tx, req, provider, bid.ProposedAmountCents, &bidRef)
		if err != nil {
			return err
		}
		req, err = requests.GetByID(req.ID)
		if err != nil {
			return domain.Unexpected("BiddingService.AcceptBid", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.notifier.NotifyBidAccepted(booking)
	for _, b := range rejected {
		if b.ID != bidID {
			s.notifier.NotifyBidRejected(b.ProviderID, req.ID)
		}
	}
	return req, booking, nil
}

// AcceptFixedRequest is the fixed-price path to a booking. A provider accepts for itself; the
// requester (or an admin) names the provider.
func (s *BiddingService) AcceptFixedRequest(ctx context.Context, actor domain.Actor, requestID uint, providerID *uint) (*models.ServiceRequest, *models.Booking, error) {
	var (
		req     *models.ServiceRequest
		booking *models.Booking
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)

		var err error
		req, err = requests.GetByID(requestID)
		if err != nil {
			return lookupErr(err, "service request not found", "BiddingService.AcceptFixedRequest")
		}
		var providerUserID uint
		switch {
		case actor.IsProvider():
			if providerID != nil && *providerID != actor.ID {
				return domain.Forbidden("providers can only accept requests for themselves")
			}
			providerUserID = actor.ID
		case req.RequesterID == actor.ID || actor.IsAdmin():
			if providerID == nil || *providerID == 0 {
				return domain.Validation("provider_id is required")
			}
			providerUserID = *providerID
		default:
			return domain.Forbidden("not allowed to accept this request")
		}
		if req.RequestType != domain.RequestTypeFixed || req.FixedAmountCents == nil {
			return domain.InvalidState("not a fixed-price request")
		}
		if req.IsAssigned() || req.Status == domain.RequestStatusAssigned {
			return domain.InvalidState("already assigned")
		}
		if req.Status != domain.RequestStatusOpen {
			return domain.InvalidState("request is " + string(req.Status))
		}
		provider, err := s.providers.WithTx(tx).GetByUserID(providerUserID)
		if err != nil {
			return lookupErr(err, "provider not found", "BiddingService.AcceptFixedRequest")
		}
		won, err := requests.Assign(req.ID, providerUserID, provider.DisplayName, *req.FixedAmountCents, domain.RequestStatusOpen)
		if err != nil {
			return domain.Unexpected("BiddingService.AcceptFixedRequest", err)
		}
		if !won {
			return domain.InvalidState("already assigned")
		}
		booking, err = s.openBooking(tx, req, provider, *req.FixedAmountCents, nil)
		if err != nil {
			return err
		}
		req, err = requests.GetByID(req.ID)
		if err != nil {
			return domain.Unexpected("BiddingService.AcceptFixedRequest", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.notifier.NotifyRequestAssigned(booking)
	s.notifier.NotifyBidAccepted(booking)
	return req, booking, nil
}

// openBooking creates the confirmed booking for an assignment and holds its price against the
// provider's wallet.
func (s *BiddingService) openBooking(tx *gorm.DB, req *models.ServiceRequest, provider *models.Provider, amountCents int64, bidID *uint) (*models.Booking, error) {
	bookings := s.bookings.WithTx(tx)
	if bidID != nil {
		n, err := bookings.CountByBidID(*bidID)
		if err != nil {
			return nil, domain.Unexpected("BiddingService.openBooking", err)
		}
		if n > 0 {
			return nil, domain.Conflict("booking already exists for this bid")
		}
	}
	b := &models.Booking{
		ServiceRequestID: req.ID,
		BidID:            bidID,
		UserID:           req.RequesterID,
		UserName:         req.RequesterName,
		ProviderID:       provider.UserID,
		ProviderName:     provider.DisplayName,
		AgreedPriceCents: amountCents,
		Status:           domain.BookingStatusConfirmed,
	}
	if err := bookings.Create(b); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("booking already exists for this request")
		}
		return nil, domain.Unexpected("BiddingService.openBooking", err)
	}
	if err := s.wallets.WithTx(tx).Hold(provider.UserID, amountCents); err != nil {
		return nil, domain.Unexpected("BiddingService.openBooking hold", err)
	}
	return b, nil
}

// ListBidsByRequest returns bids lowest amount first.
func (s *BiddingService) ListBidsByRequest(ctx context.Context, requestID uint) ([]models.Bid, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requests.WithTx(db).GetByID(requestID); err != nil {
		return nil, lookupErr(err, "service request not found", "BiddingService.ListBidsByRequest")
	}
	list, err := s.bids.WithTx(db).ListByRequest(requestID)
	if err != nil {
		return nil, domain.Unexpected("BiddingService.ListBidsByRequest", err)
	}
	return list, nil
}

func (s *BiddingService) ListBidsByProvider(ctx context.Context, providerID uint, limit, offset int) ([]models.Bid, error) {
	list, err := s.bids.WithTx(s.db.WithContext(ctx)).ListByProvider(providerID, pageLimit(limit), offset)
	if err != nil {
		return nil, domain.Unexpected("BiddingService.ListBidsByProvider", err)
	}
	return list, nil
}
