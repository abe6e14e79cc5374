package action

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/session"
)

// Sessions yields the current session payload. *session.Manager satisfies it.
type Sessions interface {
	Current(ctx context.Context) (session.Payload, bool)
}

// Directory is the storage the guards read.
type Directory interface {
	UserByID(ctx context.Context, id int64, scope domain.Scope) (*domain.User, error)
	TeamByID(ctx context.Context, id int64) (*domain.Team, error)
}

// Recorder receives one observation per guarded call.
type Recorder interface {
	GuardOutcome(guard, outcome string)
}

// Guards holds the dependencies shared by [ValidatedWithUser] and [WithTeam].
type Guards struct {
	sessions Sessions
	dir      Directory
	recorder Recorder
}

// NewGuards wires guards. recorder may be nil.
func NewGuards(sessions Sessions, dir Directory, recorder Recorder) *Guards {
	return &Guards{sessions: sessions, dir: dir, recorder: recorder}
}

// TeamContext is what a full-context handler receives. Team and Role come
// from the session, not from a membership lookup.
type TeamContext struct {
	User *domain.User
	Team *domain.Team
	Role domain.Role
}

// Validated parses the input against schema and runs fn. Bad input yields a
// ValidationFailed outcome and fn is not called.
func Validated[T, R any](schema *Schema[T], fn func(ctx context.Context, data T, raw Input) (Outcome[R], error)) Action[R] {
	return func(ctx context.Context, in Input) (Outcome[R], error) {
		data, err := schema.Parse(in)
		if err != nil {
			return Invalid[R](validationMessage(err)), nil
		}
		return fn(ctx, data, in)
	}
}

// ValidatedWithUser requires a session whose user is still active, then validates the
// input and runs fn. A missing session or user is a fault, never a result.
func ValidatedWithUser[T, R any](g *Guards, schema *Schema[T], fn func(ctx context.Context, data T, raw Input, user *domain.User) (Outcome[R], error)) Action[R] {
	return func(ctx context.Context, in Input) (Outcome[R], error) {
		out, err := validatedWithUser(ctx, g, schema, fn, in)
		g.record("validated_with_user", out.Kind, err)
		return out, err
	}
}

func validatedWithUser[T, R any](ctx context.Context, g *Guards, schema *Schema[T], fn func(context.Context, T, Input, *domain.User) (Outcome[R], error), in Input) (Outcome[R], error) {
	p, ok := g.sessions.Current(ctx)
	if !ok {
		return Outcome[R]{}, ErrUnauthenticated
	}

	user, err := g.activeUser(ctx, p.UserID)
	if err != nil {
		return Outcome[R]{}, err
	}
	if user == nil {
		return Outcome[R]{}, ErrUserNotFound
	}

	data, err := schema.Parse(in)
	if err != nil {
		return Invalid[R](validationMessage(err)), nil
	}
	return fn(ctx, data, in, user)
}

// WithTeam requires a session, then loads the session's user and team concurrently.
// Either one missing redirects to the sign-in page; storage failures are faults.
func WithTeam[R any](g *Guards, fn func(ctx context.Context, raw Input, tc TeamContext) (Outcome[R], error)) Action[R] {
	return func(ctx context.Context, in Input) (Outcome[R], error) {
		out, err := withTeam(ctx, g, fn, in)
		g.record("with_team", out.Kind, err)
		return out, err
	}
}

func withTeam[R any](ctx context.Context, g *Guards, fn func(context.Context, Input, TeamContext) (Outcome[R], error), in Input) (Outcome[R], error) {
	p, ok := g.sessions.Current(ctx)
	if !ok {
		return RedirectTo[R](SignInPath), nil
	}

	if p.TeamID == 0 {
		return RedirectTo[R](SignInPath), nil
	}

	var (
		user *domain.User
		team *domain.Team
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		u, err := g.activeUser(egCtx, p.UserID)
		user = u
		return err
	})
	eg.Go(func() error {
		t, err := g.team(egCtx, p.TeamID)
		team = t
		return err
	})
	if err := eg.Wait(); err != nil {
		return Outcome[R]{}, err
	}

	if user == nil || team == nil {
		return RedirectTo[R](SignInPath), nil
	}
	return fn(ctx, in, TeamContext{User: user, Team: team, Role: p.Role})
}

// activeUser returns nil without error when the user is missing or deleted.
func (g *Guards) activeUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := g.dir.UserByID(ctx, id, domain.ScopeActive)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	if !domain.ScopeActive.Includes(user) {
		return nil, nil
	}
	return user, nil
}

// team returns nil without error when the team is gone.
func (g *Guards) team(ctx context.Context, id int64) (*domain.Team, error) {
	team, err := g.dir.TeamByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load team %d: %w", id, err)
	}
	return team, nil
}

func (g *Guards) record(guard string, kind Kind, err error) {
	if g.recorder == nil {
		return
	}
	if err != nil {
		g.recorder.GuardOutcome(guard, "fault")
		return
	}
	g.recorder.GuardOutcome(guard, kind.String())
}

func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return "Invalid input"
}
