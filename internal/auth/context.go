package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor"

// Role names understood by the service. Authentication happens upstream;
// the gateway forwards the verified identity and this package only carries
// it on the context.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// HasRole reports whether the actor carries the named role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ContextWithActor returns a new context carrying the authenticated actor.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated actor from the context, if
// any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	value := ctx.Value(actorKey)
	if value == nil {
		return Actor{}, false
	}
	actor, ok := value.(Actor)
	if !ok || actor.ID == uuid.Nil {
		return Actor{}, false
	}
	return actor, true
}

// RequireActor returns the actor on the context or an error when the request
// carries no identity.
func RequireActor(ctx context.Context) (Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, fmt.Errorf("request carries no authenticated actor")
	}
	return actor, nil
}

// RequireRole returns the actor when it carries any of the named roles.
func RequireRole(ctx context.Context, roles ...string) (Actor, error) {
	actor, err := RequireActor(ctx)
	if err != nil {
		return Actor{}, err
	}
	for _, role := range roles {
		if actor.HasRole(role) {
			return actor, nil
		}
	}
	return Actor{}, fmt.Errorf("actor %s lacks required role", actor.ID)
}
