// Package memstore is an in-memory implementation of domain.Store used by tests and the
// `serve --memory` development mode. All methods are safe for concurrent use.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSaaS/domain"
)

// Store holds every table in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	now func() time.Time
	seq int64

	users       map[int64]domain.User
	teams       map[int64]domain.Team
	members     map[int64]domain.TeamMember
	invitations map[int64]domain.Invitation
	activity    []domain.ActivityLog
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[int64]domain.User),
		teams:       make(map[int64]domain.Team),
		members:     make(map[int64]domain.TeamMember),
		invitations: make(map[int64]domain.Invitation),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) UserByID(_ context.Context, id int64, scope domain.Scope) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || !scope.Includes(&u) {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string, scope domain.Scope) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range s.users {
		if normalizeEmail(u.Email) == email && scope.Includes(&u) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email, 0) {
		return fmt.Errorf("user %q: %w", u.Email, domain.ErrConflict)
	}
	now := s.now()
	u.ID = s.nextID()
	if u.Role == "" {
		u.Role = domain.RoleMember
	}
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UpdateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return fmt.Errorf("user %q: %w", u.Email, domain.ErrConflict)
	}
	u.CreatedAt = existing.CreatedAt
	u.DeletedAt = existing.DeletedAt
	u.UpdatedAt = s.now()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) SoftDeleteUser(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrNotFound
	}
	u.DeletedAt = &at
	u.Email = domain.DeletedEmail(u.Email, u.ID)
	u.UpdatedAt = at
	s.users[id] = u
	return nil
}

func (s *Store) emailTaken(email string, except int64) bool {
	email = normalizeEmail(email)
	for id, u := range s.users {
		if id != except && normalizeEmail(u.Email) == email {
			return true
		}
	}
	return false
}

func (s *Store) TeamByID(_ context.Context, id int64) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *Store) TeamByStripeCustomerID(_ context.Context, customerID string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if customerID == "" {
		return nil, domain.ErrNotFound
	}
	for _, t := range s.teams {
		if t.StripeCustomerID == customerID {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) CreateTeam(_ context.Context, t *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t.ID = s.nextID()
	t.CreatedAt, t.UpdatedAt = now, now
	s.teams[t.ID] = *t
	return nil
}

func (s *Store) UpdateTeamSubscription(_ context.Context, teamID int64, update domain.SubscriptionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teams[teamID]
	if !ok {
		return domain.ErrNotFound
	}
	t.StripeCustomerID = update.StripeCustomerID
	t.StripeSubscriptionID = update.StripeSubscriptionID
	t.StripeProductID = update.StripeProductID
	t.PlanName = update.PlanName
	t.SubscriptionStatus = update.SubscriptionStatus
	t.UpdatedAt = s.now()
	s.teams[teamID] = t
	return nil
}

func (s *Store) MembershipForUser(_ context.Context, userID int64) (*domain.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *domain.TeamMember
	for _, m := range s.members {
		if m.UserID != userID {
			continue
		}
		if first == nil || m.ID < first.ID {
			m := m
			first = &m
		}
	}
	if first == nil {
		return nil, domain.ErrNotFound
	}
	return first, nil
}

func (s *Store) TeamMembers(_ context.Context, teamID int64) ([]domain.MemberWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MemberWithUser
	for _, m := range s.members {
		if m.TeamID != teamID {
			continue
		}
		u := s.users[m.UserID]
		out = append(out, domain.MemberWithUser{TeamMember: m, Name: u.Name, Email: u.Email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateTeamMember(_ context.Context, m *domain.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[m.UserID]; !ok {
		return fmt.Errorf("member user %d: %w", m.UserID, domain.ErrNotFound)
	}
	if _, ok := s.teams[m.TeamID]; !ok {
		return fmt.Errorf("member team %d: %w", m.TeamID, domain.ErrNotFound)
	}
	m.ID = s.nextID()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = s.now()
	}
	s.members[m.ID] = *m
	return nil
}

func (s *Store) RemoveTeamMember(_ context.Context, memberID, teamID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok || m.TeamID != teamID {
		return false, nil
	}
	delete(s.members, memberID)
	return true, nil
}

func (s *Store) RemoveMembershipsForUser(_ context.Context, userID, teamID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.members {
		if m.UserID == userID && m.TeamID == teamID {
			delete(s.members, id)
		}
	}
	return nil
}

func (s *Store) MemberByEmail(_ context.Context, teamID int64, email string) (*domain.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, m := range s.members {
		if m.TeamID != teamID {
			continue
		}
		if u, ok := s.users[m.UserID]; ok && normalizeEmail(u.Email) == email {
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) PendingInvitation(_ context.Context, teamID int64, email string) (*domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, inv := range s.invitations {
		if inv.TeamID == teamID && normalizeEmail(inv.Email) == email && inv.Status == domain.InvitationPending {
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) InvitationByID(_ context.Context, id int64) (*domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invitations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

func (s *Store) CreateInvitation(_ context.Context, inv *domain.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv.ID = s.nextID()
	if inv.InvitedAt.IsZero() {
		inv.InvitedAt = s.now()
	}
	if inv.Status == "" {
		inv.Status = domain.InvitationPending
	}
	s.invitations[inv.ID] = *inv
	return nil
}

func (s *Store) AcceptInvitation(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok || inv.Status != domain.InvitationPending {
		return domain.ErrNotFound
	}
	inv.Status = domain.InvitationAccepted
	s.invitations[id] = inv
	return nil
}

func (s *Store) AppendActivity(_ context.Context, entry *domain.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if len(entry.IPAddress) > domain.MaxIPAddressLength {
		entry.IPAddress = entry.IPAddress[:domain.MaxIPAddressLength]
	}
	s.activity = append(s.activity, *entry)
	return nil
}

// ActivityForUser returns the newest entries first.
func (s *Store) ActivityForUser(_ context.Context, userID int64, limit int) ([]domain.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ActivityLog
	for i := len(s.activity) - 1; i >= 0; i-- {
		e := s.activity[i]
		if e.UserID == nil || *e.UserID != userID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Activity returns a copy of every activity row in insertion order.
func (s *Store) Activity() []domain.ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ActivityLog, len(s.activity))
	copy(out, s.activity)
	return out
}

var _ domain.Store = (*Store)(nil)
