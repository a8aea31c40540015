// Package guard composes authentication, permission resolution, rate
// limiting and audit logging into a single request guard.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JungWooHyub/le-feu-sub000/internal/audit"
	"github.com/JungWooHyub/le-feu-sub000/internal/platform/httpx"
	"github.com/JungWooHyub/le-feu-sub000/internal/ratelimit"
	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// Authenticator resolves a bearer credential to an actor.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (*shared.Actor, error)
}

// defaultOwnerParams are the route parameter names checked, in order, when a
// route does not declare its own. First present wins.
var defaultOwnerParams = []string{"userId", "authorId", "employerId"}

// Options declares what a route requires before its handler runs.
type Options struct {
	// RequireAuth gates the route behind authentication. When false the
	// guard passes through untouched (public endpoints).
	RequireAuth bool
	// RequiredRole denies actors ranked below it.
	RequiredRole rbac.Role
	// RequiredPermission runs the resolver for a single permission.
	RequiredPermission rbac.Permission
	// AnyOf allows when at least one permission resolves; AllOf requires
	// every one. Both are evaluated in declared order.
	AnyOf []rbac.Permission
	AllOf []rbac.Permission
	// AllowOwnerAccess feeds the resource owner id into the resolver so
	// ownership fallbacks can apply.
	AllowOwnerAccess bool
	// OwnerParams overrides the candidate route-parameter names the owner
	// id is read from.
	OwnerParams []string
	// Action names the operation in audit records and rate-limit keys.
	Action string
	// Limit throttles the route per actor when set.
	Limit *ratelimit.Policy
}

// Guard builds route middleware from Options.
type Guard struct {
	auth    Authenticator
	limiter *ratelimit.Limiter
	auditor *audit.Logger
	logger  *slog.Logger
}

// New constructs a Guard. Limiter and auditor may be nil; the corresponding
// steps are skipped.
func New(auth Authenticator, limiter *ratelimit.Limiter, auditor *audit.Logger, logger *slog.Logger) *Guard {
	return &Guard{auth: auth, limiter: limiter, auditor: auditor, logger: logger}
}

// Protect wraps a handler with the declared checks. The guard never lets an
// internal fault escape: panics map to a generic 500 and the original error
// stays in the server log.
func (g *Guard) Protect(opts Options) func(http.Handler) http.Handler {
	ownerParams := opts.OwnerParams
	if len(ownerParams) == 0 {
		ownerParams = defaultOwnerParams
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if g.logger != nil {
						g.logger.Error("guard panic", slog.String("path", r.URL.Path), slog.Any("error", rec))
					}
					httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				}
			}()

			if !opts.RequireAuth {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := g.auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			ctx := shared.ContextWithActor(r.Context(), actor)
			r = r.WithContext(ctx)

			if opts.RequiredRole != "" && !rbac.RankAtLeast(actor.Role, opts.RequiredRole) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden",
					fmt.Sprintf("Requires role %s or above", opts.RequiredRole))
				return
			}

			if opts.Limit != nil && g.limiter != nil {
				res := g.limiter.Check(ctx, opts.Limit.Action+":"+actor.ID, opts.Limit.Limit, opts.Limit.Window)
				writeRateHeaders(w, res)
				if !res.Allowed {
					httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests",
						"Rate limit exceeded for "+opts.Limit.Action)
					return
				}
			}

			if decision, checked := g.authorize(r, actor, opts, ownerParams); checked && !decision.Allowed {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", decision.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authorize runs the resolver for whichever permission requirement the route
// declared and audits the outcome. The second return is false when the route
// declared no permission requirement.
func (g *Guard) authorize(r *http.Request, actor *shared.Actor, opts Options, ownerParams []string) (rbac.Decision, bool) {
	authz := rbac.Context{ActorRole: actor.Role, ActorID: actor.ID}
	if opts.AllowOwnerAccess {
		authz.ResourceOwnerID = ownerFromRoute(r, ownerParams)
	}

	var decision rbac.Decision
	var permission rbac.Permission
	switch {
	case opts.RequiredPermission != "":
		permission = opts.RequiredPermission
		decision = rbac.Resolve(authz, opts.RequiredPermission)
	case len(opts.AnyOf) > 0:
		permission = opts.AnyOf[0]
		decision = rbac.ResolveAny(authz, opts.AnyOf...)
	case len(opts.AllOf) > 0:
		permission = opts.AllOf[0]
		decision = rbac.ResolveAll(authz, opts.AllOf...)
	default:
		return rbac.Decision{Allowed: true}, false
	}

	g.auditor.Record(r.Context(), audit.Record{
		ActorID:         actor.ID,
		ActorRole:       actor.Role,
		Permission:      permission,
		Action:          opts.Action,
		Allowed:         decision.Allowed,
		Reason:          decision.Reason,
		ResourceOwnerID: authz.ResourceOwnerID,
	})
	return decision, true
}

func ownerFromRoute(r *http.Request, params []string) string {
	for _, name := range params {
		if v := chi.URLParam(r, name); v != "" {
			return v
		}
	}
	return ""
}

func writeRateHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", res.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", res.ResetAt.UnixMilli()))
	if !res.Allowed {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", res.RetryAfter(time.Now())))
	}
}
