package auth

import (
	"context"

	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
)

// Profile is the account record fetched for a verified subject.
type Profile struct {
	ID         string
	Role       rbac.Role
	IsVerified bool
	Metadata   map[string]any
}

// TokenVerifier validates a bearer token with the external identity provider
// and returns the subject identifier. Token parsing, signature checking and
// expiry are the provider's concern, not ours.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ProfileStore fetches the account record for a subject. Read-only from this
// subsystem's perspective.
type ProfileStore interface {
	GetProfile(ctx context.Context, subjectID string) (Profile, error)
}
