package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JungWooHyub/le-feu-sub000/internal/platform/httpx"
	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// Policy is a named budget over the generic check contract.
type Policy struct {
	Action string
	Limit  int
	Window time.Duration
}

// Domain presets. These are configuration, not behavior.
var (
	// PostCreation throttles job and community post creation.
	PostCreation = Policy{Action: "post_create", Limit: 10, Window: 15 * time.Minute}
	// Comment throttles comment creation.
	Comment = Policy{Action: "comment", Limit: 20, Window: 5 * time.Minute}
	// Reaction throttles like-style high-frequency actions.
	Reaction = Policy{Action: "reaction", Limit: 30, Window: time.Minute}
)

// Middleware enforces a policy per actor. Anonymous requests fall back to the
// remote address so public write endpoints still carry a budget.
func (l *Limiter) Middleware(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := policy.Action + ":" + callerKey(r)
			res := l.Check(r.Context(), key, policy.Limit, policy.Window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.UnixMilli(), 10))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter(l.now())))
				httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests",
					"Rate limit exceeded for "+policy.Action)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if actor := shared.ActorFromContext(r.Context()); actor != nil {
		return actor.ID
	}
	return r.RemoteAddr
}
