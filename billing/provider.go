package billing

import (
	"context"
	"errors"
)

var (
	// ErrBillingDisabled is returned by [Disabled].
	ErrBillingDisabled = errors.New("billing is not configured")
	// ErrInvalidCheckout is returned when a completed checkout lacks a customer,
	// subscription or plan.
	ErrInvalidCheckout = errors.New("invalid checkout session")
	// ErrInvalidWebhook is returned for payloads whose signature does not verify.
	ErrInvalidWebhook = errors.New("invalid webhook payload")
)

// CheckoutRequest starts a subscription checkout.
type CheckoutRequest struct {
	PriceID string
	// CustomerID reuses an existing customer; empty lets the provider create one.
	CustomerID string
	// ClientReferenceID is echoed back in the completed checkout (the user id).
	ClientReferenceID string
}

// Subscription is the billing state written onto a team.
type Subscription struct {
	CustomerID     string
	SubscriptionID string
	ProductID      string
	PlanName       string
	Status         string
}

// Active reports whether the subscription grants access.
func (s Subscription) Active() bool {
	return s.Status == "active" || s.Status == "trialing"
}

// CheckoutResult is a completed checkout.
type CheckoutResult struct {
	ClientReferenceID string
	Subscription      Subscription
}

// SubscriptionEvent is a parsed subscription webhook.
type SubscriptionEvent struct {
	Type         string
	Subscription Subscription
}

// Price is one recurring price offered on the pricing page.
type Price struct {
	ID              string
	ProductID       string
	ProductName     string
	UnitAmount      int64
	Currency        string
	Interval        string
	TrialPeriodDays int64
}

// Provider is the billing collaborator.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	ResolveCheckout(ctx context.Context, sessionID string) (CheckoutResult, error)
	// ParseWebhook verifies and decodes a webhook. It returns nil for event types that do
	// not concern subscriptions.
	ParseWebhook(payload []byte, signature string) (*SubscriptionEvent, error)
	ListPrices(ctx context.Context) ([]Price, error)
}

// Disabled is a Provider that refuses every call.
type Disabled struct{}

func (Disabled) CreateCheckoutSession(context.Context, CheckoutRequest) (string, error) {
	return "", ErrBillingDisabled
}

func (Disabled) CreatePortalSession(context.Context, string) (string, error) {
	return "", ErrBillingDisabled
}

func (Disabled) ResolveCheckout(context.Context, string) (CheckoutResult, error) {
	return CheckoutResult{}, ErrBillingDisabled
}

func (Disabled) ParseWebhook([]byte, string) (*SubscriptionEvent, error) {
	return nil, ErrBillingDisabled
}

func (Disabled) ListPrices(context.Context) ([]Price, error) {
	return nil, ErrBillingDisabled
}
