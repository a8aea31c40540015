package shared

import (
	"context"

	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
)

// Actor describes the authenticated account a request runs as.
type Actor struct {
	ID         string
	Role       rbac.Role
	IsVerified bool
	Metadata   map[string]any
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context, nil when the request is
// unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
