package goSaaS

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method runs on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSignInRateLimited is returned by the limiter when an email or IP exhausted its
	// failure budget. It surfaces to forms as MsgSignInRateLimited.
	ErrSignInRateLimited = errors.New("sign-in rate limited")
	// ErrSignUpRateLimited is the sign-up counterpart of ErrSignInRateLimited.
	ErrSignUpRateLimited = errors.New("sign-up rate limited")
	// ErrInvalidWebhook is returned by HandleWebhook for payloads failing verification.
	ErrInvalidWebhook = errors.New("invalid webhook")
)

// Form-level messages. These are results, not faults: they travel back in FormState.Error.
const (
	MsgInvalidCredentials   = "Invalid email or password. Please try again."
	MsgSignInRateLimited    = "Too many sign-in attempts. Please try again later."
	MsgSignUpRateLimited    = "Too many sign-up attempts. Please try again later."
	MsgCreateUserFailed     = "Failed to create user. Please try again."
	MsgCreateTeamFailed     = "Failed to create team. Please try again."
	MsgInvalidInvitation    = "Invalid or expired invitation."
	MsgWrongCurrentPassword = "Current password is incorrect."
	MsgPasswordUnchanged    = "New password must be different from the current password."
	MsgPasswordMismatch     = "New password and confirmation password do not match."
	MsgPasswordUpdated      = "Password updated successfully."
	MsgDeleteWrongPassword  = "Incorrect password. Account deletion failed."
	MsgAccountUpdated       = "Account updated successfully."
	MsgEmailTaken           = "Email is already in use."
	MsgNoTeam               = "User is not part of a team"
	MsgAdminOnlyRemove      = "Only team admins can remove members"
	MsgAdminOnlyInvite      = "Only team admins can invite new members"
	MsgMemberNotFound       = "Team member not found"
	MsgMemberRemoved        = "Team member removed successfully"
	MsgAlreadyMember        = "User is already a member of this team"
	MsgInvitationExists     = "An invitation has already been sent to this email"
	MsgInvitationSent       = "Invitation sent successfully"
)
