package rbac

// Role identifies a privilege tier on the platform.
type Role string

// Platform roles, lowest rank first.
const (
	RoleUser       Role = "user"
	RoleEmployer   Role = "employer"
	RoleCurator    Role = "curator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Permission names one allowed operation on one resource family using the
// resource:verb convention.
type Permission string

// Job board permissions.
const (
	PermJobsView      Permission = "jobs:view"
	PermJobsCreate    Permission = "jobs:create"
	PermJobsApply     Permission = "jobs:apply"
	PermJobsUpdateOwn Permission = "jobs:update_own"
	PermJobsUpdateAny Permission = "jobs:update_any"
	PermJobsDeleteOwn Permission = "jobs:delete_own"
	PermJobsDeleteAny Permission = "jobs:delete_any"
)

// Community permissions.
const (
	PermCommunityView      Permission = "community:view"
	PermCommunityCreate    Permission = "community:create"
	PermCommunityComment   Permission = "community:comment"
	PermCommunityLike      Permission = "community:like"
	PermCommunityUpdateOwn Permission = "community:update_own"
	PermCommunityUpdateAny Permission = "community:update_any"
	PermCommunityDeleteOwn Permission = "community:delete_own"
	PermCommunityDeleteAny Permission = "community:delete_any"
)

// Curation permissions.
const (
	PermCurationsView      Permission = "curations:view"
	PermCurationsCreate    Permission = "curations:create"
	PermCurationsFeature   Permission = "curations:feature"
	PermCurationsUpdateOwn Permission = "curations:update_own"
	PermCurationsUpdateAny Permission = "curations:update_any"
	PermCurationsDeleteOwn Permission = "curations:delete_own"
	PermCurationsDeleteAny Permission = "curations:delete_any"
)

// User and audit administration permissions.
const (
	PermUsersView        Permission = "users:view"
	PermUsersUpdateOwn   Permission = "users:update_own"
	PermUsersUpdateAny   Permission = "users:update_any"
	PermUsersManageRoles Permission = "users:manage_roles"
	PermAuditView        Permission = "audit:view"
)

// roleRanks defines the strict total order over roles. Rank alone grants
// nothing; grants come from the catalog composition below or from the
// resolver's fallbacks.
var roleRanks = map[Role]int{
	RoleUser:       1,
	RoleEmployer:   2,
	RoleCurator:    3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// basePermissions is the baseline every role composition starts from.
var basePermissions = []Permission{
	PermJobsView,
	PermJobsApply,
	PermCommunityView,
	PermCommunityCreate,
	PermCommunityComment,
	PermCommunityLike,
	PermCommunityUpdateOwn,
	PermCommunityDeleteOwn,
	PermCurationsView,
	PermUsersUpdateOwn,
}

// employerPermissions is the additional block for job providers.
var employerPermissions = []Permission{
	PermJobsCreate,
	PermJobsUpdateOwn,
	PermJobsDeleteOwn,
}

// curatorPermissions is the additional block for content curators.
var curatorPermissions = []Permission{
	PermCurationsCreate,
	PermCurationsFeature,
	PermCurationsUpdateOwn,
	PermCurationsDeleteOwn,
}

// adminPermissions is the additional block for administrators.
var adminPermissions = []Permission{
	PermJobsUpdateAny,
	PermJobsDeleteAny,
	PermCommunityUpdateAny,
	PermCommunityDeleteAny,
	PermCurationsUpdateAny,
	PermCurationsDeleteAny,
	PermUsersView,
	PermUsersUpdateAny,
	PermUsersManageRoles,
	PermAuditView,
}

// rolePermissions is the explicit per-role composition. Curators deliberately
// skip the employer block: curating content does not make an account a job
// provider. The resolver's hierarchy fallback still lets curators act on
// grants held by lower-ranked roles.
var rolePermissions = map[Role][]Permission{
	RoleUser:     compose(basePermissions),
	RoleEmployer: compose(basePermissions, employerPermissions),
	RoleCurator:  compose(basePermissions, curatorPermissions),
	RoleAdmin:    compose(basePermissions, employerPermissions, curatorPermissions, adminPermissions),
	// RoleSuperAdmin holds the full enumeration via AllPermissions, see
	// PermissionsOf. A composed list would silently fall behind as the
	// permission enumeration grows.
}

func compose(blocks ...[]Permission) []Permission {
	seen := make(map[Permission]struct{})
	var out []Permission
	for _, block := range blocks {
		for _, p := range block {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// Roles returns all declared roles ordered by ascending rank.
func Roles() []Role {
	return []Role{RoleUser, RoleEmployer, RoleCurator, RoleAdmin, RoleSuperAdmin}
}

// AllPermissions enumerates every declared permission.
func AllPermissions() []Permission {
	return compose(
		basePermissions,
		employerPermissions,
		curatorPermissions,
		adminPermissions,
	)
}

// PermissionsOf returns the permission set granted to a role. Unrecognized
// roles get an empty set rather than an error.
func PermissionsOf(role Role) []Permission {
	if role == RoleSuperAdmin {
		return AllPermissions()
	}
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RankOf returns the numeric rank of a role, 0 for unrecognized roles.
func RankOf(role Role) int {
	return roleRanks[role]
}

// RankAtLeast reports whether role ranks at or above the threshold role.
func RankAtLeast(role, threshold Role) bool {
	r := RankOf(role)
	return r > 0 && r >= RankOf(threshold)
}

// HasPermission reports whether the role's catalog set contains the
// permission directly, with no fallback paths.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range PermissionsOf(role) {
		if p == perm {
			return true
		}
	}
	return false
}
