package users_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JungWooHyub/le-feu-sub000/internal/guard"
	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
	"github.com/JungWooHyub/le-feu-sub000/internal/users"
)

type stubAuth struct {
	actor *shared.Actor
}

func (s stubAuth) Authenticate(ctx context.Context, authorization string) (*shared.Actor, error) {
	if s.actor == nil {
		return nil, shared.ErrUnauthenticated
	}
	return s.actor, nil
}

type stubRepo struct {
	updatedUser string
	updatedRole rbac.Role
	err         error
}

func (s *stubRepo) UpdateRole(ctx context.Context, userID string, role rbac.Role) error {
	if s.err != nil {
		return s.err
	}
	s.updatedUser = userID
	s.updatedRole = role
	return nil
}

func newRouter(actor *shared.Actor, repo *stubRepo) *chi.Mux {
	g := guard.New(stubAuth{actor: actor}, nil, nil, nil)
	handler := users.NewHandler(nil, users.NewService(repo, nil), g)
	r := chi.NewRouter()
	r.Route("/users", handler.MountRoutes)
	return r
}

func TestMePermissions(t *testing.T) {
	r := newRouter(&shared.Actor{ID: "c1", Role: rbac.RoleCurator, IsVerified: true}, &stubRepo{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me/permissions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"role":"curator"`)
	assert.Contains(t, body, string(rbac.PermCurationsFeature))
	assert.NotContains(t, body, string(rbac.PermUsersManageRoles))
}

func TestAssignRoleBySuperAdmin(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(&shared.Actor{ID: "root", Role: rbac.RoleSuperAdmin}, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/u7/role", strings.NewReader(`{"role":"admin"}`))
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u7", repo.updatedUser)
	assert.Equal(t, rbac.RoleAdmin, repo.updatedRole)
}

func TestAssignRoleAdminCannotMintAdmins(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(&shared.Actor{ID: "adm", Role: rbac.RoleAdmin}, repo)

	for _, role := range []string{"admin", "super_admin"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/users/u7/role", strings.NewReader(`{"role":"`+role+`"}`))
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code, "role %s", role)
	}
	assert.Empty(t, repo.updatedUser, "no write should have happened")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/u7/role", strings.NewReader(`{"role":"curator"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rbac.RoleCurator, repo.updatedRole)
}

func TestAssignRoleBlockedForOrdinaryRoles(t *testing.T) {
	// The guard denies before the service runs: users lack users:manage_roles.
	repo := &stubRepo{}
	r := newRouter(&shared.Actor{ID: "u1", Role: rbac.RoleUser}, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/u7/role", strings.NewReader(`{"role":"user"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.updatedUser)
}

func TestAssignRoleValidation(t *testing.T) {
	r := newRouter(&shared.Actor{ID: "root", Role: rbac.RoleSuperAdmin}, &stubRepo{})

	for _, body := range []string{`{}`, `{"role":"emperor"}`, `not json`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/users/u7/role", strings.NewReader(body))
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestAssignRoleTargetMissing(t *testing.T) {
	repo := &stubRepo{err: shared.ErrNotFound}
	r := newRouter(&shared.Actor{ID: "root", Role: rbac.RoleSuperAdmin}, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/users/ghost/role", strings.NewReader(`{"role":"user"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
