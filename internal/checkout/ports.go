package checkout

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

// Consumers define the interfaces they need.

type CartStore interface {
	Snapshot() domain.Cart
	Clear()
	Freeze() (release func())
}

type BackupStore interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

type PaymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (domain.PaymentSheetResponse, error)
}

type SheetConfig struct {
	SessionID           uuid.UUID
	ClientSecret        string
	MerchantDisplayName string
}

type Outcome string

const (
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeCanceled    Outcome = "canceled"
	OutcomeFailed      Outcome = "failed"
	// OutcomeInterrupted means the host stopped waiting before the user
	// finished. The provider may still have captured the payment.
	OutcomeInterrupted Outcome = "interrupted"
)

type PaymentResult struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

// PaymentSheet is the provider's payment UI. Present blocks until the user
// finishes; a done ctx ends it as interrupted.
type PaymentSheet interface {
	Init(ctx context.Context, cfg SheetConfig) error
	Present(ctx context.Context, sessionID uuid.UUID) PaymentResult
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order domain.Order) error
}
