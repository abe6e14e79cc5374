// Package billing creates checkout and customer-portal sessions and interprets the
// billing provider's checkout results and subscription webhooks.
//
// [Stripe] talks to the Stripe API through stripe-go. [Disabled] is used when no key is
// configured; every call fails with [ErrBillingDisabled].
//
// # What this package must NOT do
//
//   - Touch storage; callers persist the returned [Subscription].
//   - Import goSaaS or action.
package billing
