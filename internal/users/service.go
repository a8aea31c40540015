package users

import (
	"context"
	"fmt"

	"github.com/JungWooHyub/le-feu-sub000/internal/audit"
	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// RepositoryPort defines the data access the service needs.
type RepositoryPort interface {
	UpdateRole(ctx context.Context, userID string, role rbac.Role) error
}

// Service handles the privileged role-assignment write path.
type Service struct {
	repo    RepositoryPort
	auditor *audit.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, auditor *audit.Logger) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// AssignRole reassigns the target user's role on behalf of the actor. The
// assignment rule is evaluated independently of the permission resolver:
// super admins assign anything, admins only roles ranked strictly below
// admin, everyone else is refused.
func (s *Service) AssignRole(ctx context.Context, actor *shared.Actor, targetUserID string, newRole rbac.Role) error {
	allowed := actor != nil && rbac.CanAssignRole(actor.Role, newRole)

	rec := audit.Record{
		Permission: rbac.PermUsersManageRoles,
		Action:     "users.assign_role",
		Allowed:    allowed,
	}
	if actor != nil {
		rec.ActorID = actor.ID
		rec.ActorRole = actor.Role
	}
	if !allowed {
		rec.Reason = fmt.Sprintf("Role %s may not be assigned by %s", newRole, rec.ActorRole)
		s.auditor.Record(ctx, rec)
		return fmt.Errorf("assign role %s: %w", newRole, shared.ErrForbidden)
	}
	s.auditor.Record(ctx, rec)

	return s.repo.UpdateRole(ctx, targetUserID, newRole)
}
