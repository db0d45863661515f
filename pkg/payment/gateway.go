package payment

import (
	"context"
)

// CheckoutParams describes a hosted checkout session request.
// Amount is in minor units (cents).
type CheckoutParams struct {
	Amount         int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type CaptureResult struct {
	Status         string
	AmountReceived int64
	LatestChargeID string
	Currency       string
}

type CancelResult struct {
	Status string
}

// TransferParams describes a split transfer to a connected payout account.
type TransferParams struct {
	Amount         int64
	Currency       string
	Destination    string
	SourceChargeID string
	IdempotencyKey string
}

type Transfer struct {
	ID string
}

type Refund struct {
	ID     string
	Status string
}

// Gateway is the port over the external payment processor. Every call
// that creates a resource takes a deterministic idempotency key so a
// retry after a timeout never duplicates the financial operation.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CapturePaymentIntent(ctx context.Context, intentID string) (*CaptureResult, error)
	CancelPaymentIntent(ctx context.Context, intentID string) (*CancelResult, error)
	RetrieveChargeFee(ctx context.Context, chargeID string) (int64, error)
	CreateTransfer(ctx context.Context, params TransferParams) (*Transfer, error)
	CreateRefund(ctx context.Context, intentID string, amount int64) (*Refund, error)
}
