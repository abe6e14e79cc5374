package domain

import "time"

// ActivityType names a significant account or team event recorded in the activity log.
type ActivityType string

const (
	ActivitySignUp           ActivityType = "EMAIL_SIGN_UP"
	ActivitySignIn           ActivityType = "EMAIL_SIGN_IN"
	ActivitySignOut          ActivityType = "SIGN_OUT"
	ActivityUpdatePassword   ActivityType = "UPDATE_PASSWORD"
	ActivityDeleteAccount    ActivityType = "DELETE_ACCOUNT"
	ActivityUpdateAccount    ActivityType = "UPDATE_ACCOUNT"
	ActivityCreateTeam       ActivityType = "CREATE_TEAM"
	ActivityRemoveTeamMember ActivityType = "REMOVE_TEAM_MEMBER"
	ActivityInviteTeamMember ActivityType = "INVITE_TEAM_MEMBER"
	ActivityAcceptInvitation ActivityType = "ACCEPT_INVITATION"
)

// MaxIPAddressLength bounds ActivityLog.IPAddress (an IPv6 literal with zone fits).
const MaxIPAddressLength = 45

// ActivityLog is one append-only row. TeamID and UserID are nil when the event happened
// without a resolvable session (for example a sign-out with no cookie).
type ActivityLog struct {
	ID        int64
	TeamID    *int64
	UserID    *int64
	Action    ActivityType
	Timestamp time.Time
	IPAddress string
}
