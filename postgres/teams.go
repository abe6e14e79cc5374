package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MrEthical07/goSaaS/domain"
)

const teamColumns = `id, name, created_at, updated_at,
	COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
	COALESCE(stripe_product_id, ''), COALESCE(plan_name, ''), COALESCE(subscription_status, '')`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt,
		&t.StripeCustomerID, &t.StripeSubscriptionID, &t.StripeProductID, &t.PlanName, &t.SubscriptionStatus)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) TeamByID(ctx context.Context, id int64) (*domain.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("team %d", id))
	}
	return t, nil
}

func (s *Store) TeamByStripeCustomerID(ctx context.Context, customerID string) (*domain.Team, error) {
	t, err := scanTeam(s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE stripe_customer_id = $1 LIMIT 1`, customerID))
	if err != nil {
		return nil, mapError(err, "team by customer")
	}
	return t, nil
}

func (s *Store) CreateTeam(ctx context.Context, t *domain.Team) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO teams (name) VALUES ($1) RETURNING id, created_at, updated_at`, t.Name).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapError(err, "create team")
}

func (s *Store) UpdateTeamSubscription(ctx context.Context, teamID int64, u domain.SubscriptionUpdate) error {
	query := `
		UPDATE teams
		SET stripe_customer_id = NULLIF($2, ''),
		    stripe_subscription_id = NULLIF($3, ''),
		    stripe_product_id = NULLIF($4, ''),
		    plan_name = NULLIF($5, ''),
		    subscription_status = NULLIF($6, ''),
		    updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, teamID, u.StripeCustomerID, u.StripeSubscriptionID, u.StripeProductID, u.PlanName, u.SubscriptionStatus)
	if err != nil {
		return mapError(err, fmt.Sprintf("update team %d subscription", teamID))
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, fmt.Sprintf("update team %d subscription", teamID))
	}
	return nil
}

func scanMember(row pgx.Row) (*domain.TeamMember, error) {
	var (
		m    domain.TeamMember
		role string
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.TeamID, &role, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}

func (s *Store) MembershipForUser(ctx context.Context, userID int64) (*domain.TeamMember, error) {
	m, err := scanMember(s.pool.QueryRow(ctx,
		`SELECT id, user_id, team_id, role, joined_at FROM team_members WHERE user_id = $1 ORDER BY id LIMIT 1`, userID))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("membership for user %d", userID))
	}
	return m, nil
}

func (s *Store) TeamMembers(ctx context.Context, teamID int64) ([]domain.MemberWithUser, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.user_id, m.team_id, m.role, m.joined_at, COALESCE(u.name, ''), u.email
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.id
	`, teamID)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("members of team %d", teamID))
	}

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MemberWithUser, error) {
		var (
			m    domain.MemberWithUser
			role string
		)
		err := row.Scan(&m.ID, &m.UserID, &m.TeamID, &role, &m.JoinedAt, &m.Name, &m.Email)
		m.Role = domain.Role(role)
		return m, err
	})
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("members of team %d", teamID))
	}
	return members, nil
}

func (s *Store) CreateTeamMember(ctx context.Context, m *domain.TeamMember) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO team_members (user_id, team_id, role) VALUES ($1, $2, $3) RETURNING id, joined_at`,
		m.UserID, m.TeamID, string(m.Role)).Scan(&m.ID, &m.JoinedAt)
	return mapError(err, "create team member")
}

func (s *Store) RemoveTeamMember(ctx context.Context, memberID, teamID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1 AND team_id = $2`, memberID, teamID)
	if err != nil {
		return false, mapError(err, fmt.Sprintf("remove member %d", memberID))
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) RemoveMembershipsForUser(ctx context.Context, userID, teamID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM team_members WHERE user_id = $1 AND team_id = $2`, userID, teamID)
	return mapError(err, fmt.Sprintf("remove memberships of user %d", userID))
}

func (s *Store) MemberByEmail(ctx context.Context, teamID int64, email string) (*domain.TeamMember, error) {
	m, err := scanMember(s.pool.QueryRow(ctx, `
		SELECT m.id, m.user_id, m.team_id, m.role, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1 AND lower(u.email) = lower($2)
		LIMIT 1
	`, teamID, email))
	if err != nil {
		return nil, mapError(err, "member by email")
	}
	return m, nil
}

const invitationColumns = `id, team_id, email, role, invited_by, invited_at, status`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var (
		inv  domain.Invitation
		role string
	)
	if err := row.Scan(&inv.ID, &inv.TeamID, &inv.Email, &role, &inv.InvitedBy, &inv.InvitedAt, &inv.Status); err != nil {
		return nil, err
	}
	inv.Role = domain.Role(role)
	return &inv, nil
}

func (s *Store) PendingInvitation(ctx context.Context, teamID int64, email string) (*domain.Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE team_id = $1 AND lower(email) = lower($2) AND status = $3 LIMIT 1`,
		teamID, email, domain.InvitationPending))
	if err != nil {
		return nil, mapError(err, "pending invitation")
	}
	return inv, nil
}

func (s *Store) InvitationByID(ctx context.Context, id int64) (*domain.Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("invitation %d", id))
	}
	return inv, nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	if inv.Status == "" {
		inv.Status = domain.InvitationPending
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO invitations (team_id, email, role, invited_by, status) VALUES ($1, $2, $3, $4, $5) RETURNING id, invited_at`,
		inv.TeamID, inv.Email, string(inv.Role), inv.InvitedBy, inv.Status).Scan(&inv.ID, &inv.InvitedAt)
	return mapError(err, "create invitation")
}

func (s *Store) AcceptInvitation(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE invitations SET status = $2 WHERE id = $1 AND status = $3`,
		id, domain.InvitationAccepted, domain.InvitationPending)
	if err != nil {
		return mapError(err, fmt.Sprintf("accept invitation %d", id))
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, fmt.Sprintf("accept invitation %d", id))
	}
	return nil
}
