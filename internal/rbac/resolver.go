package rbac

import (
	"fmt"
	"strings"
)

// Context carries the per-request facts a permission decision needs. It is
// built for a single check and never persisted.
type Context struct {
	ActorRole       Role
	ActorID         string
	ResourceOwnerID string
}

// Decision is the outcome of a permission check. Reason is always set on
// denial; on allow it is set only when a fallback path granted access.
type Decision struct {
	Allowed bool
	Reason  string
}

// Fallback allow reasons.
const (
	ReasonResourceOwner = "Resource owner permission"
	ReasonRoleHierarchy = "Role hierarchy permission"
)

// ownCounterparts maps a blanket permission to its own-resource variant for
// the ownership fallback. Permissions without an entry have no owner path.
var ownCounterparts = map[Permission]Permission{
	PermJobsUpdateAny:      PermJobsUpdateOwn,
	PermJobsDeleteAny:      PermJobsDeleteOwn,
	PermCommunityUpdateAny: PermCommunityUpdateOwn,
	PermCommunityDeleteAny: PermCommunityDeleteOwn,
	PermCurationsUpdateAny: PermCurationsUpdateOwn,
	PermCurationsDeleteAny: PermCurationsDeleteOwn,
	PermUsersUpdateAny:     PermUsersUpdateOwn,
}

// Resolve decides whether the actor may exercise the permission. Checks run
// in order and short-circuit on the first match: direct catalog grant,
// ownership fallback, hierarchy fallback, deny.
func Resolve(ctx Context, perm Permission) Decision {
	if HasPermission(ctx.ActorRole, perm) {
		return Decision{Allowed: true}
	}

	if ctx.ResourceOwnerID != "" && ctx.ResourceOwnerID == ctx.ActorID {
		if own, ok := ownCounterparts[perm]; ok && HasPermission(ctx.ActorRole, own) {
			return Decision{Allowed: true, Reason: ReasonResourceOwner}
		}
	}

	// Secondary sweep over the hierarchy table: the actor inherits grants
	// held by roles ranked at or below its own. Never upward; a plain user
	// must not pick up administrator grants here.
	actorRank := RankOf(ctx.ActorRole)
	if actorRank > 0 {
		for _, role := range Roles() {
			if role == ctx.ActorRole || RankOf(role) > actorRank {
				continue
			}
			if HasPermission(role, perm) {
				return Decision{Allowed: true, Reason: ReasonRoleHierarchy}
			}
		}
	}

	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("Insufficient permissions. Required: %s, User role: %s", perm, ctx.ActorRole),
	}
}

// ResolveAny allows if at least one of the permissions resolves to an allow.
// Permissions are evaluated in caller order and the first allowing decision
// is returned unchanged, so audit traces stay reproducible.
func ResolveAny(ctx Context, perms ...Permission) Decision {
	for _, perm := range perms {
		if d := Resolve(ctx, perm); d.Allowed {
			return d
		}
	}
	names := make([]string, len(perms))
	for i, perm := range perms {
		names[i] = string(perm)
	}
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("Insufficient permissions. Required any of: %s, User role: %s", strings.Join(names, ", "), ctx.ActorRole),
	}
}

// ResolveAll allows only if every permission resolves to an allow, returning
// the first denial found.
func ResolveAll(ctx Context, perms ...Permission) Decision {
	for _, perm := range perms {
		if d := Resolve(ctx, perm); !d.Allowed {
			return d
		}
	}
	return Decision{Allowed: true}
}

// CanAssignRole reports whether an actor with the given role may assign the
// target role to another account. Super admins may assign anything; admins
// may assign roles ranked strictly below admin. This rule is independent of
// Resolve and has no fallback paths.
func CanAssignRole(actor, target Role) bool {
	if RankOf(target) == 0 {
		return false
	}
	switch actor {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return RankOf(target) < RankOf(RoleAdmin)
	default:
		return false
	}
}
