package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Webhook event types that change a team's subscription.
const (
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// StripeConfig configures [Stripe].
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// BaseURL is the public origin used to build success, cancel and return URLs.
	BaseURL         string
	TrialPeriodDays int64
	// Backends overrides the API endpoint; nil uses Stripe's.
	Backends *stripe.Backends
}

// Stripe implements [Provider] against the Stripe API.
type Stripe struct {
	api           *client.API
	webhookSecret string
	baseURL       string
	trialDays     int64
}

// NewStripe returns a Stripe provider. SecretKey and BaseURL are required.
func NewStripe(cfg StripeConfig) (*Stripe, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("billing: stripe secret key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("billing: base URL is required")
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, cfg.Backends)

	return &Stripe{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		trialDays:     cfg.TrialPeriodDays,
	}, nil
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if req.PriceID == "" {
		return "", errors.New("billing: price id is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:          stripe.String(s.baseURL + "/api/stripe/checkout?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:           stripe.String(s.baseURL + "/pricing"),
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if s.trialDays > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(s.trialDays),
		}
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *Stripe) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", errors.New("billing: customer id is required")
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.baseURL + "/dashboard"),
	}
	params.Context = ctx

	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *Stripe) ResolveCheckout(ctx context.Context, sessionID string) (CheckoutResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("customer")
	params.AddExpand("subscription")

	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("billing: retrieve checkout session: %w", err)
	}
	if sess.Customer == nil || sess.Subscription == nil {
		return CheckoutResult{}, fmt.Errorf("%w: missing customer or subscription", ErrInvalidCheckout)
	}
	if sess.ClientReferenceID == "" {
		return CheckoutResult{}, fmt.Errorf("%w: missing client reference", ErrInvalidCheckout)
	}

	subParams := &stripe.SubscriptionParams{}
	subParams.Context = ctx
	subParams.AddExpand("items.data.price.product")

	sub, err := s.api.Subscriptions.Get(sess.Subscription.ID, subParams)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("billing: retrieve subscription: %w", err)
	}

	out := subscriptionFrom(sub)
	out.CustomerID = sess.Customer.ID
	if out.ProductID == "" {
		return CheckoutResult{}, fmt.Errorf("%w: subscription has no product", ErrInvalidCheckout)
	}
	return CheckoutResult{ClientReferenceID: sess.ClientReferenceID, Subscription: out}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*SubscriptionEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	switch string(event.Type) {
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
	default:
		return nil, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	return &SubscriptionEvent{Type: string(event.Type), Subscription: subscriptionFrom(&sub)}, nil
}

func (s *Stripe) ListPrices(ctx context.Context) ([]Price, error) {
	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
		Type:   stripe.String(string(stripe.PriceTypeRecurring)),
	}
	params.Context = ctx
	params.AddExpand("data.product")

	var prices []Price
	it := s.api.Prices.List(params)
	for it.Next() {
		p := it.Price()
		out := Price{
			ID:         p.ID,
			UnitAmount: p.UnitAmount,
			Currency:   string(p.Currency),
		}
		if p.Product != nil {
			out.ProductID = p.Product.ID
			out.ProductName = p.Product.Name
		}
		if p.Recurring != nil {
			out.Interval = string(p.Recurring.Interval)
			out.TrialPeriodDays = p.Recurring.TrialPeriodDays
		}
		prices = append(prices, out)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("billing: list prices: %w", err)
	}
	return prices, nil
}

func subscriptionFrom(sub *stripe.Subscription) Subscription {
	out := Subscription{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		if price := sub.Items.Data[0].Price; price != nil && price.Product != nil {
			out.ProductID = price.Product.ID
			out.PlanName = price.Product.Name
		}
	}
	return out
}
