package goSaaS

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/domain"
)

// Checkout starts a subscription checkout for the signed-in user's team and redirects to
// the provider's hosted page.
func (e *Engine) Checkout(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.checkout == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.checkout(ctx, in)
}

func (e *Engine) handleCheckout(ctx context.Context, raw action.Input, tc action.TeamContext) (action.Outcome[FormState], error) {
	priceID := raw.Get("priceId")
	if priceID == "" {
		return action.Invalid[FormState]("Required"), nil
	}
	return e.startCheckout(ctx, tc.User.ID, tc.Team, priceID)
}

// CustomerPortal redirects to the provider's billing portal, or to the pricing page when
// the team has never subscribed.
func (e *Engine) CustomerPortal(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.customerPortal == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.customerPortal(ctx, in)
}

func (e *Engine) handleCustomerPortal(ctx context.Context, _ action.Input, tc action.TeamContext) (action.Outcome[FormState], error) {
	if tc.Team.StripeCustomerID == "" || tc.Team.StripeProductID == "" {
		return action.RedirectTo[FormState](PricingPath), nil
	}
	url, err := e.billing.CreatePortalSession(ctx, tc.Team.StripeCustomerID)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("create portal session: %w", err)
	}
	return action.RedirectTo[FormState](url), nil
}

// CompleteCheckout finishes a checkout the provider redirected back from: the team of the
// referenced user gets the subscription and the user is signed in.
func (e *Engine) CompleteCheckout(ctx context.Context, sessionID string) (action.Outcome[FormState], error) {
	if e == nil || e.sessions == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	if sessionID == "" {
		return action.RedirectTo[FormState](PricingPath), nil
	}

	result, err := e.billing.ResolveCheckout(ctx, sessionID)
	if err != nil {
		return action.Outcome[FormState]{}, err
	}
	userID, err := strconv.ParseInt(result.ClientReferenceID, 10, 64)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("%w: client reference %q", billing.ErrInvalidCheckout, result.ClientReferenceID)
	}

	user, err := e.store.UserByID(ctx, userID, domain.ScopeActive)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("checkout user: %w", err)
	}
	member, err := e.store.MembershipForUser(ctx, user.ID)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("checkout membership: %w", err)
	}

	sub := result.Subscription
	if err := e.store.UpdateTeamSubscription(ctx, member.TeamID, domain.SubscriptionUpdate{
		StripeCustomerID:     sub.CustomerID,
		StripeSubscriptionID: sub.SubscriptionID,
		StripeProductID:      sub.ProductID,
		PlanName:             sub.PlanName,
		SubscriptionStatus:   sub.Status,
	}); err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("store subscription: %w", err)
	}

	if err := e.sessions.Create(ctx, user.ID, member.TeamID, member.Role); err != nil {
		return action.Outcome[FormState]{}, err
	}
	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricCheckoutCompleted)
	e.emitAudit(ctx, auditEventSubscriptionUpdated, true, user.ID, member.TeamID, nil, func() map[string]string {
		return map[string]string{"status": sub.Status, "plan": sub.PlanName}
	})
	return action.RedirectTo[FormState](DashboardPath), nil
}

// HandleWebhook verifies a provider webhook and applies subscription changes. Events that
// do not concern subscriptions are accepted and ignored.
func (e *Engine) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if e == nil || e.billing == nil {
		return ErrEngineNotReady
	}
	event, err := e.billing.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidWebhook) {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		return err
	}
	if event == nil {
		return nil
	}
	return e.HandleSubscriptionChange(ctx, event.Subscription)
}

// HandleSubscriptionChange writes a subscription update onto the team owning the
// customer. Active and trialing subscriptions keep their plan; any other status clears
// the subscription while keeping the customer. Unknown customers are logged and ignored.
func (e *Engine) HandleSubscriptionChange(ctx context.Context, sub billing.Subscription) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	team, err := e.store.TeamByStripeCustomerID(ctx, sub.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Warn().Str("customer_id", sub.CustomerID).Msg("subscription change for unknown customer")
			return nil
		}
		return fmt.Errorf("team for customer: %w", err)
	}

	update := domain.SubscriptionUpdate{
		StripeCustomerID:   team.StripeCustomerID,
		SubscriptionStatus: sub.Status,
	}
	if sub.Active() {
		update.StripeSubscriptionID = sub.SubscriptionID
		update.StripeProductID = sub.ProductID
		update.PlanName = sub.PlanName
		if update.PlanName == "" && sub.ProductID == team.StripeProductID {
			update.PlanName = team.PlanName
		}
	}
	if err := e.store.UpdateTeamSubscription(ctx, team.ID, update); err != nil {
		return fmt.Errorf("store subscription: %w", err)
	}

	e.metricInc(MetricSubscriptionUpdated)
	e.emitAudit(ctx, auditEventSubscriptionUpdated, sub.Active(), 0, team.ID, nil, func() map[string]string {
		return map[string]string{"status": sub.Status}
	})
	return nil
}

// Prices lists the recurring prices for a pricing page.
func (e *Engine) Prices(ctx context.Context) ([]billing.Price, error) {
	if e == nil || e.billing == nil {
		return nil, ErrEngineNotReady
	}
	return e.billing.ListPrices(ctx)
}
