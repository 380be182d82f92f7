package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StubProvider settles every charge on the spot. Used until a real gateway is wired in.
type StubProvider struct{}

func (s *StubProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	if req.AmountCents <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	return &PaymentResponse{
		Reference: fmt.Sprintf("stub_%s", req.IdempotencyKey),
		Status:    StatusCompleted,
		PaidAt:    time.Now(),
	}, nil
}

func (s *StubProvider) VerifyPayment(ctx context.Context, reference string) (bool, error) {
	return strings.HasPrefix(reference, "stub_"), nil
}
