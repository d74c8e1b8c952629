// AngelaMos | 2026
// stripe.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/vBaustad/tripplannerhq/internal/core"
)

type stripeProcessor struct {
	api *client.API
}

// NewStripeProcessor returns a Processor backed by the Stripe API.
func NewStripeProcessor(secretKey string) Processor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeProcessor{api: api}
}

var _ Processor = (*stripeProcessor)(nil)

// EnsureCustomer reuses the first customer matching the email, creating one
// only when none exists, so repeated signup attempts never fork billing
// identities.
func (p *stripeProcessor) EnsureCustomer(
	ctx context.Context,
	email, name string,
) (string, error) {
	listParams := &stripe.CustomerListParams{}
	listParams.Context = ctx
	listParams.Email = stripe.String(email)
	listParams.Limit = stripe.Int64(1)

	iter := p.api.Customers.List(listParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", upstreamError("list customers", err)
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	if name != "" {
		params.Name = stripe.String(name)
	}

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", upstreamError("create customer", err)
	}
	return cust.ID, nil
}

func (p *stripeProcessor) CreateSetupIntent(
	ctx context.Context,
	customerID string,
) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Usage:              stripe.String("off_session"),
	}
	params.Context = ctx

	intent, err := p.api.SetupIntents.New(params)
	if err != nil {
		return nil, upstreamError("create setup intent", err)
	}
	return setupIntentFromStripe(intent), nil
}

func (p *stripeProcessor) GetSetupIntent(
	ctx context.Context,
	id string,
) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{}
	params.Context = ctx
	params.AddExpand("payment_method")

	intent, err := p.api.SetupIntents.Get(id, params)
	if err != nil {
		return nil, upstreamError("retrieve setup intent", err)
	}
	return setupIntentFromStripe(intent), nil
}

func (p *stripeProcessor) CreateSubscription(
	ctx context.Context,
	sp SubscriptionParams,
) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(sp.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(sp.PriceID)},
		},
		DefaultPaymentMethod: stripe.String(sp.PaymentMethodID),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String(string(
				stripe.SubscriptionPaymentSettingsSaveDefaultPaymentMethodOnSubscription,
			)),
		},
	}
	params.Context = ctx
	if sp.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(int64(sp.TrialPeriodDays))
	}
	for k, v := range sp.Metadata {
		params.AddMetadata(k, v)
	}

	sub, err := p.api.Subscriptions.New(params)
	if err != nil {
		return nil, upstreamError("create subscription", err)
	}
	return subscriptionFromStripe(sub), nil
}

func (p *stripeProcessor) ListSubscriptions(
	ctx context.Context,
	customerID string,
	limit int,
) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(int64(limit))
	}

	var subs []Subscription
	iter := p.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, *subscriptionFromStripe(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, upstreamError("list subscriptions", err)
	}
	return subs, nil
}

func (p *stripeProcessor) CancelSubscription(
	ctx context.Context,
	id string,
) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := p.api.Subscriptions.Cancel(id, params); err != nil {
		return upstreamError("cancel subscription", err)
	}
	return nil
}

func (p *stripeProcessor) CreateCheckoutSession(
	ctx context.Context,
	cp CheckoutParams,
) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		AllowPromotionCodes: stripe.Bool(true),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cp.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cp.SuccessURL),
		CancelURL:  stripe.String(cp.CancelURL),
	}
	params.Context = ctx
	switch {
	case cp.CustomerID != "":
		params.Customer = stripe.String(cp.CustomerID)
	case cp.CustomerEmail != "":
		params.CustomerEmail = stripe.String(cp.CustomerEmail)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, upstreamError("create checkout session", err)
	}

	out := &CheckoutSession{URL: sess.URL}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	return out, nil
}

func (p *stripeProcessor) CreatePortalSession(
	ctx context.Context,
	customerID, returnURL string,
) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", upstreamError("create portal session", err)
	}
	return sess.URL, nil
}

func setupIntentFromStripe(intent *stripe.SetupIntent) *SetupIntent {
	out := &SetupIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}
	if intent.Customer != nil {
		out.CustomerID = intent.Customer.ID
	}
	if intent.PaymentMethod != nil {
		out.PaymentMethodID = intent.PaymentMethod.ID
	}
	return out
}

func subscriptionFromStripe(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:      sub.ID,
		Status:  string(sub.Status),
		Created: time.Unix(sub.Created, 0).UTC(),
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		out.CurrentPeriodEnd = &end
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out
}

func upstreamError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return fmt.Errorf("%s: %s: %w", op, stripeErr.Msg, core.ErrUpstream)
	}
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrUpstream)
}
