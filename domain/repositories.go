package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by every lookup that matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("conflict")
)

// Scope is the soft-delete predicate applied to user lookups. Callers name it explicitly
// so authentication paths cannot silently include deleted users.
type Scope uint8

const (
	// ScopeActive matches only users whose DeletedAt is nil.
	ScopeActive Scope = iota
	// ScopeAny matches deleted users too.
	ScopeAny
)

// Includes reports whether u is visible under the scope.
func (s Scope) Includes(u *User) bool {
	if u == nil {
		return false
	}
	return s == ScopeAny || u.DeletedAt == nil
}

// UserRepository stores users.
type UserRepository interface {
	UserByID(ctx context.Context, id int64, scope Scope) (*User, error)
	UserByEmail(ctx context.Context, email string, scope Scope) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	// SoftDeleteUser sets DeletedAt and rewrites the email to "<email>-<id>-deleted" so the
	// address can be registered again.
	SoftDeleteUser(ctx context.Context, id int64, at time.Time) error
}

// TeamRepository stores teams, memberships and invitations.
type TeamRepository interface {
	TeamByID(ctx context.Context, id int64) (*Team, error)
	TeamByStripeCustomerID(ctx context.Context, customerID string) (*Team, error)
	CreateTeam(ctx context.Context, t *Team) error
	UpdateTeamSubscription(ctx context.Context, teamID int64, update SubscriptionUpdate) error

	MembershipForUser(ctx context.Context, userID int64) (*TeamMember, error)
	TeamMembers(ctx context.Context, teamID int64) ([]MemberWithUser, error)
	CreateTeamMember(ctx context.Context, m *TeamMember) error
	RemoveTeamMember(ctx context.Context, memberID, teamID int64) (bool, error)
	RemoveMembershipsForUser(ctx context.Context, userID, teamID int64) error
	MemberByEmail(ctx context.Context, teamID int64, email string) (*TeamMember, error)

	PendingInvitation(ctx context.Context, teamID int64, email string) (*Invitation, error)
	InvitationByID(ctx context.Context, id int64) (*Invitation, error)
	CreateInvitation(ctx context.Context, inv *Invitation) error
	AcceptInvitation(ctx context.Context, id int64) error
}

// ActivityRepository appends and lists activity rows.
type ActivityRepository interface {
	AppendActivity(ctx context.Context, entry *ActivityLog) error
	ActivityForUser(ctx context.Context, userID int64, limit int) ([]ActivityLog, error)
}

// Store is the full storage collaborator.
type Store interface {
	UserRepository
	TeamRepository
	ActivityRepository
}
