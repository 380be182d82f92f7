package payment

import (
	"context"
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type PaymentRequest struct {
	UserID         uint
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	Description    string
	Metadata       map[string]interface{}
}

type PaymentResponse struct {
	Reference string
	Status    string
	PaidAt    time.Time
}

type Provider interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
	VerifyPayment(ctx context.Context, reference string) (bool, error)
}
