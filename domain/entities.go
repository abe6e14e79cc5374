package domain

import (
	"strconv"
	"time"
)

// MaxEmailLength is the width of the stored email column, in characters.
const MaxEmailLength = 255

// User is an account. DeletedAt marks a soft-deleted user.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Deleted reports whether the user was soft-deleted.
func (u *User) Deleted() bool {
	return u != nil && u.DeletedAt != nil
}

// DeletedEmail is the address a soft-deleted user keeps so the original can be
// registered again. The original is cut short when the suffix would overflow
// MaxEmailLength.
func DeletedEmail(email string, id int64) string {
	suffix := "-" + strconv.FormatInt(id, 10) + "-deleted"
	r := []rune(email)
	if keep := MaxEmailLength - len(suffix); len(r) > keep {
		r = r[:keep]
	}
	return string(r) + suffix
}

// Team is a tenant. Billing fields are empty until a subscription exists.
type Team struct {
	ID                   int64
	Name                 string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
	StripeProductID      string
	PlanName             string
	SubscriptionStatus   string
}

// TeamMember links a user to a team with a role.
type TeamMember struct {
	ID       int64
	UserID   int64
	TeamID   int64
	Role     Role
	JoinedAt time.Time
}

// MemberWithUser is a membership row joined with the member's public user fields.
type MemberWithUser struct {
	TeamMember
	Name  string
	Email string
}

// Invitation statuses.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

// Invitation is a pending or accepted invite to join a team.
type Invitation struct {
	ID        int64
	TeamID    int64
	Email     string
	Role      Role
	InvitedBy int64
	InvitedAt time.Time
	Status    string
}

// SubscriptionUpdate carries the billing fields written after checkout or a webhook.
// Empty strings clear the stored value.
type SubscriptionUpdate struct {
	StripeCustomerID     string
	StripeSubscriptionID string
	StripeProductID      string
	PlanName             string
	SubscriptionStatus   string
}
