package goSaaS

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/password"
	"github.com/MrEthical07/goSaaS/session"
)

func activityFor(h *harness, userID int64) []domain.ActivityType {
	var out []domain.ActivityType
	for _, e := range h.store.Activity() {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e.Action)
		}
	}
	return out
}

func currentUser(t *testing.T, h *harness, b *browser) *UserView {
	t.Helper()
	var (
		user *UserView
		err  error
	)
	b.do(func(ctx context.Context) {
		user, err = h.engine.CurrentUser(ctx)
	})
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	return user
}

func teamOf(t *testing.T, h *harness, b *browser) *TeamView {
	t.Helper()
	var (
		team *TeamView
		err  error
	)
	b.do(func(ctx context.Context) {
		team, err = h.engine.TeamForUser(ctx)
	})
	if err != nil {
		t.Fatalf("team for user: %v", err)
	}
	return team
}

func TestSignUpCreatesTeamAdminAndSession(t *testing.T) {
	h := newHarness(t, nil)
	b := h.signUp(t, "owner@example.test", "password123")

	user := currentUser(t, h, b)
	if user == nil || user.Email != "owner@example.test" {
		t.Fatalf("current user = %+v", user)
	}

	team := teamOf(t, h, b)
	if team == nil || team.Name != "owner@example.test's Team" {
		t.Fatalf("team = %+v", team)
	}
	if len(team.Members) != 1 || team.Members[0].Role != domain.RoleAdmin || team.Members[0].UserID != user.ID {
		t.Fatalf("members = %+v", team.Members)
	}

	got := activityFor(h, user.ID)
	want := []domain.ActivityType{domain.ActivityCreateTeam, domain.ActivitySignUp}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("activity = %v, want %v", got, want)
	}
	for _, e := range h.store.Activity() {
		if e.IPAddress != testIP {
			t.Fatalf("activity ip = %q", e.IPAddress)
		}
	}
	if n := h.engine.metrics.Value(MetricSignUpSuccess); n != 1 {
		t.Fatalf("sign-up metric = %d", n)
	}
}

func TestSignUpRejectsExistingEmail(t *testing.T) {
	h := newHarness(t, nil)
	h.signUp(t, "taken@example.test", "password123")

	b := newBrowser()
	out := b.mustSubmit(t, h.engine.SignUp, "email", "taken@example.test", "password", "different123")
	expectFormError(t, out, MsgCreateUserFailed)
	if out.Value.Fields["email"] != "taken@example.test" {
		t.Fatalf("fields = %v", out.Value.Fields)
	}
	if b.signedIn() {
		t.Fatal("rejected sign-up set a cookie")
	}
}

func TestSignUpWithInvitationJoinsInvitedTeam(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.signUp(t, "admin@example.test", "password123")
	expectFormSuccess(t, admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "new@example.test", "role", "member"), MsgInvitationSent)

	team := teamOf(t, h, admin)
	inv, err := h.store.PendingInvitation(context.Background(), team.ID, "new@example.test")
	if err != nil {
		t.Fatalf("pending invitation: %v", err)
	}

	joined := h.signUp(t, "new@example.test", "password123", "inviteId", strconv.FormatInt(inv.ID, 10))
	user := currentUser(t, h, joined)

	joinedTeam := teamOf(t, h, joined)
	if joinedTeam.ID != team.ID || len(joinedTeam.Members) != 2 {
		t.Fatalf("joined team = %+v", joinedTeam)
	}
	for _, m := range joinedTeam.Members {
		if m.UserID == user.ID && m.Role != domain.RoleMember {
			t.Fatalf("invited role = %s", m.Role)
		}
	}

	got := activityFor(h, user.ID)
	if len(got) != 2 || got[0] != domain.ActivityAcceptInvitation || got[1] != domain.ActivitySignUp {
		t.Fatalf("activity = %v", got)
	}

	accepted, err := h.store.InvitationByID(context.Background(), inv.ID)
	if err != nil || accepted.Status != domain.InvitationAccepted {
		t.Fatalf("invitation = %+v, %v", accepted, err)
	}
}

func TestSignUpWithInvalidInvitationCreatesNothing(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.signUp(t, "admin@example.test", "password123")
	admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "invited@example.test", "role", "admin")
	team := teamOf(t, h, admin)
	inv, err := h.store.PendingInvitation(context.Background(), team.ID, "invited@example.test")
	if err != nil {
		t.Fatalf("pending invitation: %v", err)
	}

	cases := map[string]string{
		"unknown id":   "999",
		"not a number": "abc",
		"other email":  strconv.FormatInt(inv.ID, 10),
	}
	for name, inviteID := range cases {
		t.Run(name, func(t *testing.T) {
			b := newBrowser()
			out := b.mustSubmit(t, h.engine.SignUp, "email", "stranger@example.test", "password", "password123", "inviteId", inviteID)
			expectFormError(t, out, MsgInvalidInvitation)
			if _, err := h.store.UserByEmail(context.Background(), "stranger@example.test", domain.ScopeAny); err == nil {
				t.Fatal("user created despite invalid invitation")
			}
		})
	}
}

func TestSignInWrongPasswordLeavesNoTrace(t *testing.T) {
	h := newHarness(t, nil)
	h.signUp(t, "owner@example.test", "password123")
	before := len(h.store.Activity())

	for _, email := range []string{"owner@example.test", "nobody@example.test"} {
		b := newBrowser()
		out := b.mustSubmit(t, h.engine.SignIn, "email", email, "password", "wrongpassword")
		expectFormError(t, out, MsgInvalidCredentials)
		if out.Value.Fields["email"] != email {
			t.Fatalf("fields = %v", out.Value.Fields)
		}
		if _, leaked := out.Value.Fields["password"]; leaked {
			t.Fatal("password echoed back")
		}
		if b.signedIn() {
			t.Fatal("failed sign-in set a cookie")
		}
	}

	if after := len(h.store.Activity()); after != before {
		t.Fatalf("activity grew from %d to %d", before, after)
	}
	if n := h.engine.metrics.Value(MetricSignInFailure); n != 2 {
		t.Fatalf("failure metric = %d", n)
	}
}

func TestSignInIssuesSessionAndLogsActivity(t *testing.T) {
	h := newHarness(t, nil)
	owner := h.signUp(t, "owner@example.test", "password123")
	user := currentUser(t, h, owner)

	b := newBrowser()
	out := b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "password123")
	expectRedirect(t, out, DashboardPath)
	if !b.signedIn() {
		t.Fatal("sign-in did not set the session cookie")
	}
	if got := currentUser(t, h, b); got == nil || got.ID != user.ID {
		t.Fatalf("current user = %+v", got)
	}

	activity := activityFor(h, user.ID)
	if activity[len(activity)-1] != domain.ActivitySignIn {
		t.Fatalf("activity = %v", activity)
	}
}

func TestSignInValidation(t *testing.T) {
	h := newHarness(t, nil)
	b := newBrowser()

	out := b.mustSubmit(t, h.engine.SignIn, "email", "nope", "password", "password123")
	if out.Kind != action.ValidationFailed || out.Message != "Invalid email" {
		t.Fatalf("outcome = %+v", out)
	}

	out = b.mustSubmit(t, h.engine.SignIn, "email", "a@example.test", "password", "short")
	if out.Kind != action.ValidationFailed || out.Message != "String must contain at least 8 character(s)" {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestSignInRateLimitedAfterFailures(t *testing.T) {
	h := newHarness(t, nil)
	h.signUp(t, "owner@example.test", "password123")

	b := newBrowser()
	for i := 0; i < 3; i++ {
		expectFormError(t, b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "wrongpassword"), MsgInvalidCredentials)
	}

	out := b.mustSubmit(t, h.engine.SignIn, "email", "OWNER@example.test", "password", "password123")
	expectFormError(t, out, MsgSignInRateLimited)
	if b.signedIn() {
		t.Fatal("rate limited sign-in set a cookie")
	}
	if n := h.engine.metrics.Value(MetricSignInRateLimited); n != 1 {
		t.Fatalf("rate limit metric = %d", n)
	}
}

func TestSignInSuccessResetsFailureBudget(t *testing.T) {
	h := newHarness(t, nil)
	h.signUp(t, "owner@example.test", "password123")

	b := newBrowser()
	for i := 0; i < 2; i++ {
		b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "wrongpassword")
	}
	expectRedirect(t, b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "password123"), DashboardPath)
	for i := 0; i < 2; i++ {
		b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "wrongpassword")
	}
	expectRedirect(t, b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "password123"), DashboardPath)
}

func TestSignInRedirectsIntoCheckout(t *testing.T) {
	h := newHarness(t, nil)
	owner := h.signUp(t, "owner@example.test", "password123")
	user := currentUser(t, h, owner)

	b := newBrowser()
	out := b.mustSubmit(t, h.engine.SignIn, "email", "owner@example.test", "password", "password123", "redirect", "checkout", "priceId", "price_base")
	expectRedirect(t, out, "https://checkout.test/price_base")

	if len(h.billing.checkoutRequests) != 1 {
		t.Fatalf("checkout requests = %d", len(h.billing.checkoutRequests))
	}
	if ref := h.billing.checkoutRequests[0].ClientReferenceID; ref != strconv.FormatInt(user.ID, 10) {
		t.Fatalf("client reference = %q", ref)
	}
}

func TestSignOutClearsCookieAndLogs(t *testing.T) {
	h := newHarness(t, nil)
	b := h.signUp(t, "owner@example.test", "password123")
	user := currentUser(t, h, b)

	out, err := b.submit(t, h.engine.SignOut)
	if err != nil {
		t.Fatalf("sign out: %v", err)
	}
	expectRedirect(t, out, action.SignInPath)
	if b.signedIn() {
		t.Fatal("cookie survived sign-out")
	}
	activity := activityFor(h, user.ID)
	if activity[len(activity)-1] != domain.ActivitySignOut {
		t.Fatalf("activity = %v", activity)
	}
}

func TestSignOutWithoutSession(t *testing.T) {
	h := newHarness(t, nil)
	b := newBrowser()

	out, err := b.submit(t, h.engine.SignOut)
	if err != nil {
		t.Fatalf("sign out: %v", err)
	}
	expectRedirect(t, out, action.SignInPath)

	rows := h.store.Activity()
	if len(rows) != 1 || rows[0].Action != domain.ActivitySignOut || rows[0].UserID != nil || rows[0].TeamID != nil {
		t.Fatalf("activity = %+v", rows)
	}
}

func TestLegacyBcryptDigestUpgradedOnSignIn(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	bc, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	digest, err := bc.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &domain.User{Email: "legacy@example.test", PasswordHash: digest, Role: domain.RoleMember}
	if err := h.store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	b := newBrowser()
	expectRedirect(t, b.mustSubmit(t, h.engine.SignIn, "email", "legacy@example.test", "password", "password123"), DashboardPath)

	stored, err := h.store.UserByID(ctx, user.ID, domain.ScopeActive)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("digest not upgraded: %q", stored.PasswordHash)
	}
	if n := h.engine.metrics.Value(MetricPasswordRehashed); n != 1 {
		t.Fatalf("rehash metric = %d", n)
	}

	// The user has no team, so the session carries none.
	var p session.Payload
	b.do(func(ctx context.Context) { p, _ = h.engine.Sessions().Current(ctx) })
	if p.UserID != user.ID || p.TeamID != 0 {
		t.Fatalf("payload = %+v", p)
	}
}

func TestTamperedCookieIsAnonymousAndCounted(t *testing.T) {
	h := newHarness(t, nil)
	b := newBrowser()
	b.cookies[session.DefaultCookieName] = &http.Cookie{Name: session.DefaultCookieName, Value: "not-a-token"}

	if user := currentUser(t, h, b); user != nil {
		t.Fatalf("tampered cookie resolved to %+v", user)
	}
	if n := h.engine.metrics.Value(MetricSessionTampered); n != 1 {
		t.Fatalf("tampered metric = %d", n)
	}
}
