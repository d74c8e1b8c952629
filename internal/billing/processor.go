// AngelaMos | 2026
// processor.go

package billing

import (
	"context"
	"time"
)

// SetupIntent statuses as reported by the payment processor. Only succeeded
// intents may be exchanged for a subscription.
const (
	SetupIntentStatusSucceeded  = "succeeded"
	SetupIntentStatusProcessing = "processing"
)

type SetupIntent struct {
	ID              string
	ClientSecret    string
	Status          string
	CustomerID      string
	PaymentMethodID string
}

type Subscription struct {
	ID               string
	Status           string
	PriceID          string
	CurrentPeriodEnd *time.Time
	Created          time.Time
}

type SubscriptionParams struct {
	CustomerID      string
	PriceID         string
	PaymentMethodID string
	TrialPeriodDays int
	Metadata        map[string]string
}

type CheckoutParams struct {
	PriceID       string
	CustomerID    string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	URL        string
	CustomerID string
}

// Processor is the payment-processor surface the services depend on. The
// stripe-backed implementation lives in stripe.go; tests substitute mocks.
type Processor interface {
	EnsureCustomer(ctx context.Context, email, name string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)
	GetSetupIntent(ctx context.Context, id string) (*SetupIntent, error)
	CreateSubscription(
		ctx context.Context,
		params SubscriptionParams,
	) (*Subscription, error)
	ListSubscriptions(
		ctx context.Context,
		customerID string,
		limit int,
	) ([]Subscription, error)
	CancelSubscription(ctx context.Context, id string) error
	CreateCheckoutSession(
		ctx context.Context,
		params CheckoutParams,
	) (*CheckoutSession, error)
	CreatePortalSession(
		ctx context.Context,
		customerID, returnURL string,
	) (string, error)
}
