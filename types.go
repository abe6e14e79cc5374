package goSaaS

import (
	"time"

	"github.com/MrEthical07/goSaaS/domain"
)

// FormState is the result every form action returns. Fields echoes non-secret inputs back
// so a form can be re-rendered after an error.
type FormState struct {
	Error   string            `json:"error,omitempty"`
	Success string            `json:"success,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// UserView is the public projection of a user.
type UserView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MemberView is one row of TeamView.Members.
type MemberView struct {
	ID       int64       `json:"id"`
	UserID   int64       `json:"userId"`
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email"`
}

// TeamView is a team with its members.
type TeamView struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	PlanName           string       `json:"planName,omitempty"`
	SubscriptionStatus string       `json:"subscriptionStatus,omitempty"`
	Members            []MemberView `json:"teamMembers"`
}

// ActivityView is one activity log row.
type ActivityView struct {
	ID        int64               `json:"id"`
	Action    domain.ActivityType `json:"action"`
	Timestamp time.Time           `json:"timestamp"`
	IPAddress string              `json:"ipAddress,omitempty"`
}

func newUserView(u *domain.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func newTeamView(t *domain.Team, members []domain.MemberWithUser) *TeamView {
	view := &TeamView{
		ID:                 t.ID,
		Name:               t.Name,
		PlanName:           t.PlanName,
		SubscriptionStatus: t.SubscriptionStatus,
		Members:            make([]MemberView, 0, len(members)),
	}
	for _, m := range members {
		view.Members = append(view.Members, MemberView{
			ID:       m.ID,
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			Name:     m.Name,
			Email:    m.Email,
		})
	}
	return view
}
